package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	factoring "github.com/xraph/factoring"
	"github.com/xraph/factoring/config"
	"github.com/xraph/factoring/invoice"
	"github.com/xraph/factoring/reputation"
	factoringstore "github.com/xraph/factoring/store"
	"github.com/xraph/factoring/types"
)

// compile-time interface check
var _ factoringstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("factoring/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("factoring/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Config Store ====================

func (s *Store) SetConfig(ctx context.Context, cfg *config.Config) error {
	m := toConfigModel(cfg)
	_, err := s.pg.NewInsert(m).
		OnConflict("(id) DO UPDATE").
		Set("admin = EXCLUDED.admin").
		Set("asset = EXCLUDED.asset").
		Set("treasury = EXCLUDED.treasury").
		Set("default_advance_bps = EXCLUDED.default_advance_bps").
		Set("protocol_fee_bps = EXCLUDED.protocol_fee_bps").
		Set("min_invoice_amount = EXCLUDED.min_invoice_amount").
		Set("max_invoice_amount = EXCLUDED.max_invoice_amount").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetConfig(ctx context.Context) (*config.Config, error) {
	m := new(configModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", configRowID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, factoring.ErrNotInitialized
		}
		return nil, err
	}
	return fromConfigModel(m), nil
}

func (s *Store) HasConfig(ctx context.Context) (bool, error) {
	_, err := s.GetConfig(ctx)
	if err != nil {
		if errors.Is(err, factoring.ErrNotInitialized) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ==================== Invoice Store ====================

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invID uint64) (*invoice.Invoice, error) {
	m := new(invoiceModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", int64(invID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, factoring.ErrInvoiceNotFound
		}
		return nil, err
	}
	return fromInvoiceModel(m), nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return factoring.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	q := s.pg.NewSelect(&models)

	arg := 0
	next := func() string {
		arg++
		return fmt.Sprintf("$%d", arg)
	}
	if !opts.Originator.IsZero() {
		q = q.Where("originator = "+next(), string(opts.Originator))
	}
	if !opts.Funder.IsZero() {
		q = q.Where("funder = "+next(), string(opts.Funder))
	}
	if opts.Status != "" {
		q = q.Where("status = "+next(), string(opts.Status))
	}
	if !opts.Start.IsZero() {
		q = q.Where("created_at >= "+next(), opts.Start)
	}
	if !opts.End.IsZero() {
		q = q.Where("created_at < "+next(), opts.End)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		result[i] = fromInvoiceModel(&models[i])
	}
	return result, nil
}

// ==================== Commit methods ====================

func (s *Store) CommitFunding(ctx context.Context, inv *invoice.Invoice, fundedVolume types.Money) error {
	if err := s.UpdateInvoice(ctx, inv); err != nil {
		return err
	}
	return s.bumpCounter(ctx, "volume_funded", fundedVolume.Int64())
}

func (s *Store) CommitSettlement(ctx context.Context, inv *invoice.Invoice, rep *reputation.Reputation, settledVolume types.Money) error {
	if err := s.UpdateInvoice(ctx, inv); err != nil {
		return err
	}
	if rep != nil {
		if err := s.SetReputation(ctx, rep); err != nil {
			return err
		}
	}
	return s.bumpCounter(ctx, "volume_settled", settledVolume.Int64())
}

// ==================== Reputation Store ====================

func (s *Store) GetReputation(ctx context.Context, originator types.Principal) (*reputation.Reputation, error) {
	m := new(reputationModel)
	err := s.pg.NewSelect(m).
		Where("originator = $1", string(originator)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, factoring.ErrReputationNotFound
		}
		return nil, err
	}
	return fromReputationModel(m), nil
}

func (s *Store) SetReputation(ctx context.Context, rep *reputation.Reputation) error {
	m := toReputationModel(rep)
	_, err := s.pg.NewInsert(m).
		OnConflict("(originator) DO UPDATE").
		Set("total_invoices = EXCLUDED.total_invoices").
		Set("settled_invoices = EXCLUDED.settled_invoices").
		Set("total_volume = EXCLUDED.total_volume").
		Set("avg_settlement_days = EXCLUDED.avg_settlement_days").
		Set("on_time_rate_bps = EXCLUDED.on_time_rate_bps").
		Set("risk_score = EXCLUDED.risk_score").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ==================== Counter Store ====================

func (s *Store) AllocateInvoiceID(ctx context.Context) (uint64, error) {
	var next int64
	err := s.pg.NewRaw(`
		UPDATE factoring_counters SET next_invoice_id = next_invoice_id + 1, updated_at = $1
		WHERE id = $2 RETURNING next_invoice_id - 1
	`, now(), countersRowID).Scan(ctx, &next)
	if err != nil {
		return 0, err
	}
	return uint64(next), nil
}

func (s *Store) IncrementTotalInvoices(ctx context.Context) error {
	return s.bumpCounter(ctx, "total_invoices", 1)
}

func (s *Store) Stats(ctx context.Context) (factoringstore.Stats, error) {
	m := new(countersModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", countersRowID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return factoringstore.Stats{}, nil
		}
		return factoringstore.Stats{}, err
	}
	return factoringstore.Stats{
		TotalInvoices: uint64(m.TotalInvoices),
		VolumeFunded:  types.Money(m.VolumeFunded),
		VolumeSettled: types.Money(m.VolumeSettled),
	}, nil
}

// ExtendLifetime is a no-op: Postgres rows do not expire.
func (s *Store) ExtendLifetime(_ context.Context, _ factoringstore.Key, _, _ time.Duration) error {
	return nil
}

// ==================== Helpers ====================

func (s *Store) bumpCounter(ctx context.Context, column string, delta int64) error {
	var updated int64
	return s.pg.NewRaw(
		`UPDATE factoring_counters SET `+column+` = `+column+` + $1, updated_at = $2 WHERE id = $3 RETURNING `+column,
		delta, now(), countersRowID,
	).Scan(ctx, &updated)
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
