// Package config defines the factoring contract's singleton configuration.
//
// The configuration is created exactly once through Engine.Initialize and is
// mutated only through the bounds-checked Engine.UpdateConfig path. The
// engine is the sole writer; this package owns the entity shape and the
// bounds rules.
package config

import "github.com/xraph/factoring/types"

// Bounds for the basis-point parameters.
const (
	// MaxAdvanceBps caps the default advance fraction at 100%.
	MaxAdvanceBps uint32 = 10_000

	// MaxFeeBps caps both the protocol fee and per-invoice lender fee at 10%.
	MaxFeeBps uint32 = 1_000
)

// Fixed invoice amount bounds, set at initialization.
const (
	// MinInvoiceAmount is 50 whole asset units.
	MinInvoiceAmount = 50 * types.MinorPerUnit

	// MaxInvoiceAmount is 100,000 whole asset units.
	MaxInvoiceAmount = 100_000 * types.MinorPerUnit
)

// Config is the contract-wide configuration singleton.
type Config struct {
	types.Entity

	// Admin holds special privileges: it attests settlements by default,
	// may cancel any unfunded invoice, and is the only principal allowed
	// to update this configuration.
	Admin types.Principal `json:"admin"`

	// Asset identifies the fungible settlement asset on the external ledger.
	Asset types.Principal `json:"asset"`

	// Treasury receives the protocol fee cut of every settlement.
	Treasury types.Principal `json:"treasury"`

	// DefaultAdvanceBps is the advance fraction applied at invoice creation,
	// in basis points (9000 = 90%).
	DefaultAdvanceBps uint32 `json:"default_advance_bps"`

	// ProtocolFeeBps is the protocol's cut of each settlement, taken on the
	// invoice face amount, in basis points (50 = 0.5%).
	ProtocolFeeBps uint32 `json:"protocol_fee_bps"`

	// MinInvoiceAmount and MaxInvoiceAmount bound the face amount of new
	// invoices. Fixed at initialization.
	MinInvoiceAmount types.Money `json:"min_invoice_amount"`
	MaxInvoiceAmount types.Money `json:"max_invoice_amount"`
}

// New creates a Config with the fixed invoice bounds. Basis-point bounds are
// NOT checked here — the engine validates them before persisting so it can
// report its sentinel error kinds.
func New(admin, asset, treasury types.Principal, advanceBps, protocolFeeBps uint32) *Config {
	return &Config{
		Entity:            types.NewEntity(),
		Admin:             admin,
		Asset:             asset,
		Treasury:          treasury,
		DefaultAdvanceBps: advanceBps,
		ProtocolFeeBps:    protocolFeeBps,
		MinInvoiceAmount:  MinInvoiceAmount,
		MaxInvoiceAmount:  MaxInvoiceAmount,
	}
}

// ValidAdvanceBps reports whether bps is an acceptable advance fraction.
func ValidAdvanceBps(bps uint32) bool { return bps <= MaxAdvanceBps }

// ValidFeeBps reports whether bps is an acceptable fee fraction.
func ValidFeeBps(bps uint32) bool { return bps <= MaxFeeBps }

// ValidAmount reports whether m is a positive face amount within the
// configured bounds.
func (c *Config) ValidAmount(m types.Money) bool {
	return m.IsPositive() && m >= c.MinInvoiceAmount && m <= c.MaxInvoiceAmount
}

// Update carries an admin configuration change. Nil fields are left
// untouched; each set field is bounds-checked independently before any of
// them is applied.
type Update struct {
	Treasury       *types.Principal `json:"treasury,omitempty"`
	AdvanceBps     *uint32          `json:"advance_bps,omitempty"`
	ProtocolFeeBps *uint32          `json:"protocol_fee_bps,omitempty"`
}

// IsZero reports whether the update carries no changes.
func (u Update) IsZero() bool {
	return u.Treasury == nil && u.AdvanceBps == nil && u.ProtocolFeeBps == nil
}
