// Package invoice defines the invoice entity and its lifecycle state machine.
package invoice

import (
	"time"

	"github.com/xraph/factoring/id"
	"github.com/xraph/factoring/types"
)

// Status is the lifecycle state of an invoice.
//
// The machine is Created → Funded → Settled, with Created → Cancelled as the
// only other edge. Settled and Cancelled are terminal.
type Status string

const (
	StatusCreated   Status = "created"
	StatusFunded    Status = "funded"
	StatusSettled   Status = "settled"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusSettled || s == StatusCancelled
}

// Invoice is a tokenized receivable. Ids form a dense monotonically
// increasing sequence starting at 1, allocated by the store; invoices are
// never physically deleted — cancellation is a status transition.
type Invoice struct {
	types.Entity

	ID uint64 `json:"id"`

	// Originator is the SME that created the invoice and receives the
	// advance at funding time.
	Originator types.Principal `json:"originator"`

	// PayerRef is the opaque reference to the corporate payer expected to
	// pay the face amount.
	PayerRef string `json:"payer_ref"`

	// Amount is the face amount, bounded by the configured min/max.
	Amount types.Money `json:"amount"`

	// AdvanceAmount is derived at creation:
	// floor(Amount × defaultAdvanceBps / 10000). Always ≤ Amount.
	AdvanceAmount types.Money `json:"advance_amount"`

	// FeeBps is the lender fee fraction for this invoice (0–1000 bps),
	// applied to the advance at settlement.
	FeeBps uint32 `json:"fee_bps"`

	// Funder is the lender that advanced capital. Empty exactly while the
	// status is Created or Cancelled; set once at funding, never changed.
	Funder types.Principal `json:"funder,omitempty"`

	Status Status `json:"status"`

	// FundedAt and SettledAt are set exactly once, on the corresponding
	// transition, and never reset.
	FundedAt  *time.Time `json:"funded_at,omitempty"`
	SettledAt *time.Time `json:"settled_at,omitempty"`

	DueDate time.Time `json:"due_date"`

	Country  string `json:"country"`
	Industry string `json:"industry"`
}

// Funded reports whether the invoice currently has a lender attached.
func (inv *Invoice) Funded() bool { return !inv.Funder.IsZero() }

// SettledOnTime reports whether the invoice settled at or before its due
// date. Only meaningful once SettledAt is set.
func (inv *Invoice) SettledOnTime() bool {
	return inv.SettledAt != nil && !inv.SettledAt.After(inv.DueDate)
}

// SettlementDays returns the whole number of days between creation and
// settlement, zero until the invoice settles.
func (inv *Invoice) SettlementDays() uint32 {
	if inv.SettledAt == nil {
		return 0
	}
	days := inv.SettledAt.Sub(inv.CreatedAt) / (24 * time.Hour)
	if days < 0 {
		return 0
	}
	return uint32(days)
}

// CreateParams are the caller-supplied inputs of Engine.CreateInvoice.
type CreateParams struct {
	Originator types.Principal
	PayerRef   string
	Amount     types.Money
	DueDate    time.Time
	Country    string
	Industry   string
	FeeBps     uint32
}

// FundingReceipt is returned by Engine.FundInvoice.
type FundingReceipt struct {
	ID        id.ReceiptID    `json:"id"`
	InvoiceID uint64          `json:"invoice_id"`
	Funder    types.Principal `json:"funder"`
	Amount    types.Money     `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// ListOpts filters Engine.ListInvoices.
type ListOpts struct {
	Originator types.Principal
	Funder     types.Principal
	Status     Status
	Start      time.Time
	End        time.Time
	Limit      int
	Offset     int
}
