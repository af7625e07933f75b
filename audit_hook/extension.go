// Package audithook bridges factoring lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit system. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xraph/factoring/invoice"
	"github.com/xraph/factoring/plugin"
	"github.com/xraph/factoring/reputation"
	"github.com/xraph/factoring/settlement"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnConfigInitialized = (*Extension)(nil)
	_ plugin.OnConfigUpdated     = (*Extension)(nil)
	_ plugin.OnInvoiceCreated    = (*Extension)(nil)
	_ plugin.OnInvoiceFunded     = (*Extension)(nil)
	_ plugin.OnInvoiceSettled    = (*Extension)(nil)
	_ plugin.OnInvoiceCancelled  = (*Extension)(nil)
	_ plugin.OnReputationUpdated = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that the audit_hook package does not import
// a concrete audit system — callers inject theirs at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges factoring lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Configuration hooks
// ──────────────────────────────────────────────────

// OnConfigInitialized implements plugin.OnConfigInitialized.
func (e *Extension) OnConfigInitialized(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionConfigInitialized, SeverityInfo, OutcomeSuccess,
		ResourceConfig, "", CategoryAdmin, nil,
		"event", "config_initialized",
	)
}

// OnConfigUpdated implements plugin.OnConfigUpdated.
func (e *Extension) OnConfigUpdated(ctx context.Context, _, _ interface{}) error {
	return e.record(ctx, ActionConfigUpdated, SeverityWarning, OutcomeSuccess,
		ResourceConfig, "", CategoryAdmin, nil,
		"event", "config_updated",
	)
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (e *Extension) OnInvoiceCreated(ctx context.Context, v interface{}) error {
	inv, _ := v.(*invoice.Invoice)
	kv := []any{"event", "invoice_created"}
	if inv != nil {
		kv = append(kv,
			"originator", string(inv.Originator),
			"amount", inv.Amount.Int64(),
			"fee_bps", inv.FeeBps,
		)
	}
	return e.record(ctx, ActionInvoiceCreated, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, invoiceID(inv), CategoryFactoring, nil, kv...)
}

// OnInvoiceFunded implements plugin.OnInvoiceFunded.
func (e *Extension) OnInvoiceFunded(ctx context.Context, v interface{}, r interface{}) error {
	inv, _ := v.(*invoice.Invoice)
	kv := []any{"event", "invoice_funded"}
	if inv != nil {
		kv = append(kv,
			"funder", string(inv.Funder),
			"advance_amount", inv.AdvanceAmount.Int64(),
		)
	}
	if rcpt, ok := r.(*invoice.FundingReceipt); ok && rcpt != nil {
		kv = append(kv, "receipt_id", rcpt.ID.String())
	}
	return e.record(ctx, ActionInvoiceFunded, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, invoiceID(inv), CategoryFactoring, nil, kv...)
}

// OnInvoiceSettled implements plugin.OnInvoiceSettled.
func (e *Extension) OnInvoiceSettled(ctx context.Context, v interface{}, r interface{}) error {
	inv, _ := v.(*invoice.Invoice)
	kv := []any{"event", "invoice_settled"}
	if res, ok := r.(*settlement.Result); ok && res != nil {
		kv = append(kv,
			"settlement_id", res.ID.String(),
			"lender_amount", res.LenderAmount.Int64(),
			"sme_amount", res.SmeAmount.Int64(),
			"protocol_fee", res.ProtocolFee.Int64(),
		)
	}
	return e.record(ctx, ActionInvoiceSettled, SeverityInfo, OutcomeSuccess,
		ResourceSettlement, invoiceID(inv), CategorySettlement, nil, kv...)
}

// OnInvoiceCancelled implements plugin.OnInvoiceCancelled.
func (e *Extension) OnInvoiceCancelled(ctx context.Context, v interface{}) error {
	inv, _ := v.(*invoice.Invoice)
	return e.record(ctx, ActionInvoiceCancelled, SeverityWarning, OutcomeSuccess,
		ResourceInvoice, invoiceID(inv), CategoryFactoring, nil,
		"event", "invoice_cancelled",
	)
}

// ──────────────────────────────────────────────────
// Reputation hooks
// ──────────────────────────────────────────────────

// OnReputationUpdated implements plugin.OnReputationUpdated.
func (e *Extension) OnReputationUpdated(ctx context.Context, v interface{}) error {
	rep, _ := v.(*reputation.Reputation)
	kv := []any{"event", "reputation_updated"}
	resourceID := ""
	if rep != nil {
		resourceID = string(rep.Originator)
		kv = append(kv,
			"risk_score", rep.RiskScore,
			"settled_invoices", rep.SettledInvoices,
			"on_time_rate_bps", rep.OnTimeRateBps,
		)
	}
	return e.record(ctx, ActionReputationUpdated, SeverityInfo, OutcomeSuccess,
		ResourceReputation, resourceID, CategoryRisk, nil, kv...)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func invoiceID(inv *invoice.Invoice) string {
	if inv == nil {
		return ""
	}
	return strconv.FormatUint(inv.ID, 10)
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
