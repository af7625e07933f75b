// Package reputation maintains per-originator aggregate statistics and the
// derived risk score.
//
// Records are created lazily on an originator's first invoice and updated on
// every successful creation and settlement. The risk score is never set
// directly — it is always recomputed from the on-time rate, cumulative
// volume, and settlement count.
package reputation

import "github.com/xraph/factoring/types"

// Initial values for a fresh reputation record.
const (
	// InitialOnTimeRateBps starts every originator at a 100% on-time rate.
	InitialOnTimeRateBps uint32 = 10_000

	// InitialRiskScore is the medium-risk starting score.
	InitialRiskScore uint32 = 500
)

// Reputation is the per-originator aggregate record.
type Reputation struct {
	types.Entity

	Originator types.Principal `json:"originator"`

	// TotalInvoices counts every invoice the originator created, settled
	// or not. Invariant: SettledInvoices ≤ TotalInvoices.
	TotalInvoices   uint32 `json:"total_invoices"`
	SettledInvoices uint32 `json:"settled_invoices"`

	// TotalVolume is the cumulative face amount of settled invoices.
	TotalVolume types.Money `json:"total_volume"`

	// AvgSettlementDays is the running mean of creation-to-settlement day
	// counts. Informational only; it does not feed the risk score.
	AvgSettlementDays uint32 `json:"avg_settlement_days"`

	// OnTimeRateBps is the fraction of settlements at or before the due
	// date, in basis points.
	OnTimeRateBps uint32 `json:"on_time_rate_bps"`

	// RiskScore is 0–1000, lower is better. Derived, never set directly.
	RiskScore uint32 `json:"risk_score"`
}

// New creates a fresh reputation record for an originator.
func New(originator types.Principal) *Reputation {
	return &Reputation{
		Entity:        types.NewEntity(),
		Originator:    originator,
		OnTimeRateBps: InitialOnTimeRateBps,
		RiskScore:     InitialRiskScore,
	}
}
