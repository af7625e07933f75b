// Package plugin provides an extensible plugin system for the factoring
// engine. Plugins can hook into lifecycle events to extend functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Configuration hooks
// ──────────────────────────────────────────────────

// OnConfigInitialized is called after the one-time configuration commit.
type OnConfigInitialized interface {
	Plugin
	OnConfigInitialized(ctx context.Context, cfg interface{}) error
}

// OnConfigUpdated is called when the configuration changes.
type OnConfigUpdated interface {
	Plugin
	OnConfigUpdated(ctx context.Context, oldCfg, newCfg interface{}) error
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated is called when a new invoice is registered.
type OnInvoiceCreated interface {
	Plugin
	OnInvoiceCreated(ctx context.Context, inv interface{}) error
}

// OnInvoiceFunded is called when a funder advances an invoice.
type OnInvoiceFunded interface {
	Plugin
	OnInvoiceFunded(ctx context.Context, inv interface{}, receipt interface{}) error
}

// OnInvoiceSettled is called when a settlement completes.
type OnInvoiceSettled interface {
	Plugin
	OnInvoiceSettled(ctx context.Context, inv interface{}, result interface{}) error
}

// OnInvoiceCancelled is called when an unfunded invoice is withdrawn.
type OnInvoiceCancelled interface {
	Plugin
	OnInvoiceCancelled(ctx context.Context, inv interface{}) error
}

// ──────────────────────────────────────────────────
// Reputation hooks
// ──────────────────────────────────────────────────

// OnReputationUpdated is called after an originator's aggregates change.
type OnReputationUpdated interface {
	Plugin
	OnReputationUpdated(ctx context.Context, rep interface{}) error
}

// ──────────────────────────────────────────────────
// Risk assessors
// ──────────────────────────────────────────────────

// RiskAssessor provides supplementary risk analysis beyond the built-in
// score. Assessors are advisory; the engine stores only the built-in score.
type RiskAssessor interface {
	Plugin
	AssessorName() string
	Assess(ctx context.Context, rep interface{}) (uint32, error)
}
