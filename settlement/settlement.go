// Package settlement implements the three-way distribution of a settlement
// payment among the lender, the originator, and the protocol treasury.
//
// Distribute is a pure function: Engine.SettleInvoice and
// Engine.PreviewSettlement both delegate to it, so a preview always matches
// the amounts a real settlement would move.
package settlement

import (
	"context"
	"time"

	"github.com/xraph/factoring/id"
	"github.com/xraph/factoring/invoice"
	"github.com/xraph/factoring/types"
)

// Distribution is the three-way split of a settlement payment.
//
// The lender's yield is principal plus a fee proportional to the advance;
// the protocol fee is proportional to the full face amount, not the advance;
// the originator absorbs the remainder. SmeAmount can be zero or negative
// when the combined fees exceed the margin; SettleInvoice skips the
// originator payout in that case and PreviewSettlement reports it as-is.
type Distribution struct {
	LenderAmount types.Money `json:"lender_amount"`
	SmeAmount    types.Money `json:"sme_amount"`
	ProtocolFee  types.Money `json:"protocol_fee"`
}

// Distribute computes the split of amount for inv under the given protocol
// fee fraction:
//
//	lenderFee    = floor(advance × inv.FeeBps / 10000)
//	lenderAmount = advance + lenderFee
//	protocolFee  = floor(face × protocolFeeBps / 10000)
//	smeAmount    = amount − lenderAmount − protocolFee
func Distribute(inv *invoice.Invoice, protocolFeeBps uint32, amount types.Money) Distribution {
	lenderFee := inv.AdvanceAmount.MulBps(inv.FeeBps)
	lenderAmount := inv.AdvanceAmount.Add(lenderFee)
	protocolFee := inv.Amount.MulBps(protocolFeeBps)

	return Distribution{
		LenderAmount: lenderAmount,
		SmeAmount:    amount.Sub(lenderAmount).Sub(protocolFee),
		ProtocolFee:  protocolFee,
	}
}

// Result is returned by Engine.SettleInvoice after the distribution has been
// executed and the invoice marked settled.
type Result struct {
	ID        id.SettlementID `json:"id"`
	InvoiceID uint64          `json:"invoice_id"`
	Distribution
	Timestamp time.Time `json:"timestamp"`
}

// Authority attests that full payment for an invoice was received off-ledger
// and authorizes its distribution. The engine's default authority accepts
// only the configured admin (modeling a payment-gateway callback); hosts can
// inject an implementation backed by a signed attestation or a quorum.
type Authority interface {
	// Attest returns nil if caller may settle the invoice for amount.
	// Any non-nil error aborts the settlement as unauthorized.
	Attest(ctx context.Context, caller types.Principal, inv *invoice.Invoice, amount types.Money) error
}

// AuthorityFunc is an adapter to use a plain function as an Authority.
type AuthorityFunc func(ctx context.Context, caller types.Principal, inv *invoice.Invoice, amount types.Money) error

// Attest implements Authority.
func (f AuthorityFunc) Attest(ctx context.Context, caller types.Principal, inv *invoice.Invoice, amount types.Money) error {
	return f(ctx, caller, inv, amount)
}
