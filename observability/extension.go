// Package observability provides a metrics extension for the factoring
// engine that records lifecycle event counts.
package observability

import (
	"context"

	"github.com/xraph/factoring/invoice"
	"github.com/xraph/factoring/plugin"
	"github.com/xraph/factoring/reputation"
	"github.com/xraph/factoring/settlement"
	"github.com/xraph/factoring/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnConfigInitialized = (*MetricsExtension)(nil)
	_ plugin.OnConfigUpdated     = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceCreated    = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceFunded     = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceSettled    = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceCancelled  = (*MetricsExtension)(nil)
	_ plugin.OnReputationUpdated = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as an engine plugin to automatically track factoring metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Config metrics
	ConfigInitialized Counter
	ConfigUpdated     Counter

	// Invoice metrics
	InvoiceCreated   Counter
	InvoiceFunded    Counter
	InvoiceSettled   Counter
	InvoiceCancelled Counter
	InvoiceAmount    Histogram
	AdvanceAmount    Histogram

	// Settlement metrics
	SettlementLenderShare   Histogram
	SettlementSmeShare      Histogram
	SettlementProtocolShare Histogram

	// Reputation metrics
	ReputationUpdates Counter
	RiskScore         Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Config metrics
		ConfigInitialized: factory.Counter("factoring.config.initialized"),
		ConfigUpdated:     factory.Counter("factoring.config.updated"),

		// Invoice metrics
		InvoiceCreated:   factory.Counter("factoring.invoice.created"),
		InvoiceFunded:    factory.Counter("factoring.invoice.funded"),
		InvoiceSettled:   factory.Counter("factoring.invoice.settled"),
		InvoiceCancelled: factory.Counter("factoring.invoice.cancelled"),
		InvoiceAmount:    factory.Histogram("factoring.invoice.amount"),
		AdvanceAmount:    factory.Histogram("factoring.invoice.advance_amount"),

		// Settlement metrics
		SettlementLenderShare:   factory.Histogram("factoring.settlement.lender_share"),
		SettlementSmeShare:      factory.Histogram("factoring.settlement.sme_share"),
		SettlementProtocolShare: factory.Histogram("factoring.settlement.protocol_share"),

		// Reputation metrics
		ReputationUpdates: factory.Counter("factoring.reputation.updates"),
		RiskScore:         factory.Histogram("factoring.reputation.risk_score"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Config lifecycle hooks
// ──────────────────────────────────────────────────

// OnConfigInitialized implements plugin.OnConfigInitialized.
func (m *MetricsExtension) OnConfigInitialized(_ context.Context, _ interface{}) error {
	m.ConfigInitialized.Inc()
	return nil
}

// OnConfigUpdated implements plugin.OnConfigUpdated.
func (m *MetricsExtension) OnConfigUpdated(_ context.Context, _, _ interface{}) error {
	m.ConfigUpdated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (m *MetricsExtension) OnInvoiceCreated(_ context.Context, inv interface{}) error {
	m.InvoiceCreated.Inc()
	if v, ok := inv.(*invoice.Invoice); ok {
		m.InvoiceAmount.Observe(moneyUnits(v.Amount))
	}
	return nil
}

// OnInvoiceFunded implements plugin.OnInvoiceFunded.
func (m *MetricsExtension) OnInvoiceFunded(_ context.Context, inv interface{}, _ interface{}) error {
	m.InvoiceFunded.Inc()
	if v, ok := inv.(*invoice.Invoice); ok {
		m.AdvanceAmount.Observe(moneyUnits(v.AdvanceAmount))
	}
	return nil
}

// OnInvoiceSettled implements plugin.OnInvoiceSettled.
func (m *MetricsExtension) OnInvoiceSettled(_ context.Context, _ interface{}, result interface{}) error {
	m.InvoiceSettled.Inc()
	if r, ok := result.(*settlement.Result); ok {
		m.SettlementLenderShare.Observe(moneyUnits(r.LenderAmount))
		m.SettlementSmeShare.Observe(moneyUnits(r.SmeAmount))
		m.SettlementProtocolShare.Observe(moneyUnits(r.ProtocolFee))
	}
	return nil
}

// OnInvoiceCancelled implements plugin.OnInvoiceCancelled.
func (m *MetricsExtension) OnInvoiceCancelled(_ context.Context, _ interface{}) error {
	m.InvoiceCancelled.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Reputation hooks
// ──────────────────────────────────────────────────

// OnReputationUpdated implements plugin.OnReputationUpdated.
func (m *MetricsExtension) OnReputationUpdated(_ context.Context, rep interface{}) error {
	m.ReputationUpdates.Inc()
	if r, ok := rep.(*reputation.Reputation); ok {
		m.RiskScore.Observe(float64(r.RiskScore))
	}
	return nil
}

func moneyUnits(v types.Money) float64 {
	return float64(v.Int64()) / float64(types.MinorPerUnit)
}
