package factoring_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	factoring "github.com/xraph/factoring"
	"github.com/xraph/factoring/auth"
	"github.com/xraph/factoring/invoice"
	ledgermem "github.com/xraph/factoring/ledger/memory"
	storemem "github.com/xraph/factoring/store/memory"
)

// TestDocumentationExamples verifies that the examples in the package
// documentation compile and run.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := storemem.New()

		// The asset ledger: in production an adapter over your payment
		// rails or token contract.
		assetLedger := ledgermem.New()

		// Create engine
		eng := factoring.New(store,
			factoring.WithLogger(slog.Default()),
			factoring.WithLedger(assetLedger),
		)

		// Start the engine
		ctx := context.Background()
		if err := eng.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer eng.Stop()

		admin := factoring.Principal("admin")
		sme := factoring.Principal("sme_123")
		funder := factoring.Principal("fund_456")

		// One-time configuration: 85% advance, 0.5% protocol fee.
		ctx = auth.WithCaller(ctx, admin)
		if _, err := eng.Initialize(ctx, admin, "usdc", "treasury", 8500, 50); err != nil {
			t.Fatal(err)
		}

		// Originator registers an invoice.
		ctx = auth.WithCaller(ctx, sme)
		inv, err := eng.CreateInvoice(ctx, invoice.CreateParams{
			Originator: sme,
			PayerRef:   "ACME-2024-0042",
			Amount:     factoring.Units(1000),
			FeeBps:     900,
			DueDate:    time.Now().AddDate(0, 1, 0),
		})
		if err != nil {
			t.Fatal(err)
		}
		if inv.AdvanceAmount != factoring.Units(850) {
			t.Fatalf("advance: got %v, want %v", inv.AdvanceAmount, factoring.Units(850))
		}

		// Funder advances the locked-in amount.
		assetLedger.Mint(funder, factoring.Units(2000))
		ctx = auth.WithCaller(ctx, funder)
		receipt, err := eng.FundInvoice(ctx, inv.ID, funder)
		if err != nil {
			t.Fatal(err)
		}
		if receipt.Amount != factoring.Units(850) {
			t.Fatalf("receipt amount: got %v", receipt.Amount)
		}

		// The payer's remittance settles the invoice.
		assetLedger.Mint(admin, factoring.Units(2000))
		ctx = auth.WithCaller(ctx, admin)
		result, err := eng.SettleInvoice(ctx, inv.ID, admin, factoring.Units(1000))
		if err != nil {
			t.Fatal(err)
		}

		// lender 850 + 76.5, protocol 5, remainder to the originator.
		total := factoring.Sum(result.LenderAmount, result.SmeAmount, result.ProtocolFee)
		if total != factoring.Units(1000) {
			t.Fatalf("distribution does not conserve the payment: %v", total)
		}

		// Reputation reflects the settlement.
		rep, err := eng.GetReputation(ctx, sme)
		if err != nil {
			t.Fatal(err)
		}
		if rep.SettledInvoices != 1 {
			t.Fatalf("reputation: %+v", rep)
		}
	})

	t.Run("MoneyExamples", func(t *testing.T) {
		if factoring.Units(50) != factoring.Minor(500_000_000) {
			t.Error("Units and Minor disagree")
		}

		m, err := factoring.ParseMoney("1000.05")
		if err != nil {
			t.Fatal(err)
		}
		if m != factoring.Units(1000)+factoring.Minor(500_000) {
			t.Errorf("ParseMoney: got %v", m)
		}
	})
}
