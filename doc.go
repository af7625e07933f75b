// Package factoring provides an embeddable invoice factoring engine for Go
// applications.
//
// Factoring is designed as a library, not a service. Import it directly
// into your Go application and wire it to your own asset ledger and
// identity layer. It provides:
//
//   - A three-state invoice lifecycle (created, funded, settled) with
//     explicit cancellation of unfunded invoices
//   - Atomic three-way settlement distribution across funder, originator,
//     and protocol treasury
//   - Per-originator reputation tracking with a derived 0-1000 risk score
//   - A one-time-initialized, admin-updatable protocol configuration
//   - Pluggable storage (memory, SQLite, Postgres, MongoDB)
//   - Lifecycle plugins for audit trails and metrics
//
// # Quick Start
//
// Create an engine with your preferred store and a ledger implementation:
//
//	import (
//	    "github.com/xraph/factoring"
//	    "github.com/xraph/factoring/store/postgres"
//	)
//
//	// Initialize store
//	store, err := postgres.New(databaseURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create engine
//	eng := factoring.New(store, factoring.WithLedger(assetLedger))
//
//	// Start the engine (migrates the store, begins background workers)
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
// # Core Concepts
//
// The configuration is committed exactly once and binds the admin, the
// settlement asset, the treasury, and the protocol economics:
//
//	cfg, err := eng.Initialize(ctx, admin, asset, treasury, 8500, 50)
//
// Originators register invoices; the advance amount locks in at creation:
//
//	inv, err := eng.CreateInvoice(ctx, invoice.CreateParams{
//	    Originator: sme,
//	    PayerRef:   "ACME-2024-0042",
//	    Amount:     factoring.Units(1000),
//	    FeeBps:     900,
//	    DueDate:    time.Now().AddDate(0, 1, 0),
//	})
//
// Funders advance the locked-in amount; the payer's remittance later
// settles the invoice in one all-or-nothing distribution:
//
//	receipt, err := eng.FundInvoice(ctx, inv.ID, funder)
//	result, err := eng.SettleInvoice(ctx, inv.ID, admin, factoring.Units(1000))
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. The Money type carries amounts in minor units of the
// configured asset at seven decimal places, and every percentage is
// expressed in basis points with floor division.
package factoring
