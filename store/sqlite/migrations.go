package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the factoring store (SQLite).
var Migrations = migrate.NewGroup("factoring")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_factoring_config",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS factoring_config (
    id                  INTEGER PRIMARY KEY,
    admin               TEXT NOT NULL DEFAULT '',
    asset               TEXT NOT NULL DEFAULT '',
    treasury            TEXT NOT NULL DEFAULT '',
    default_advance_bps INTEGER NOT NULL DEFAULT 0,
    protocol_fee_bps    INTEGER NOT NULL DEFAULT 0,
    min_invoice_amount  INTEGER NOT NULL DEFAULT 0,
    max_invoice_amount  INTEGER NOT NULL DEFAULT 0,
    created_at          TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS factoring_config`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_factoring_invoices",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS factoring_invoices (
    id             INTEGER PRIMARY KEY,
    originator     TEXT NOT NULL DEFAULT '',
    payer_ref      TEXT NOT NULL DEFAULT '',
    amount         INTEGER NOT NULL DEFAULT 0,
    advance_amount INTEGER NOT NULL DEFAULT 0,
    fee_bps        INTEGER NOT NULL DEFAULT 0,
    funder         TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'created',
    funded_at      TEXT,
    settled_at     TEXT,
    due_date       TEXT NOT NULL DEFAULT (datetime('now')),
    country        TEXT NOT NULL DEFAULT '',
    industry       TEXT NOT NULL DEFAULT '',
    created_at     TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_factoring_invoices_originator ON factoring_invoices (originator, status);
CREATE INDEX IF NOT EXISTS idx_factoring_invoices_funder ON factoring_invoices (funder, status);
CREATE INDEX IF NOT EXISTS idx_factoring_invoices_created ON factoring_invoices (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS factoring_invoices`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_factoring_reputation",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS factoring_reputation (
    originator          TEXT PRIMARY KEY,
    total_invoices      INTEGER NOT NULL DEFAULT 0,
    settled_invoices    INTEGER NOT NULL DEFAULT 0,
    total_volume        INTEGER NOT NULL DEFAULT 0,
    avg_settlement_days INTEGER NOT NULL DEFAULT 0,
    on_time_rate_bps    INTEGER NOT NULL DEFAULT 10000,
    risk_score          INTEGER NOT NULL DEFAULT 500,
    created_at          TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS factoring_reputation`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_factoring_counters",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS factoring_counters (
    id              INTEGER PRIMARY KEY,
    next_invoice_id INTEGER NOT NULL DEFAULT 1,
    total_invoices  INTEGER NOT NULL DEFAULT 0,
    volume_funded   INTEGER NOT NULL DEFAULT 0,
    volume_settled  INTEGER NOT NULL DEFAULT 0,
    updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

INSERT OR IGNORE INTO factoring_counters (id, next_invoice_id, total_invoices, volume_funded, volume_settled)
VALUES (1, 1, 0, 0, 0);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS factoring_counters`)
				return err
			},
		},
	)
}
