package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/factoring"
	"github.com/xraph/factoring/config"
	"github.com/xraph/factoring/invoice"
	"github.com/xraph/factoring/reputation"
	"github.com/xraph/factoring/types"
)

func testInvoice(id uint64) *invoice.Invoice {
	now := time.Now().UTC()
	return &invoice.Invoice{
		Entity:        types.NewEntityAt(now),
		ID:            id,
		Originator:    "sme-1",
		PayerRef:      "CORP-001",
		Amount:        types.Units(1000),
		AdvanceAmount: types.Units(900),
		FeeBps:        200,
		Status:        invoice.StatusCreated,
		DueDate:       now.AddDate(0, 0, 30),
	}
}

func TestConfigLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetConfig(ctx); !errors.Is(err, factoring.ErrNotInitialized) {
		t.Errorf("GetConfig on empty: got %v, want ErrNotInitialized", err)
	}

	has, err := s.HasConfig(ctx)
	if err != nil || has {
		t.Errorf("HasConfig on empty: %v %v", has, err)
	}

	cfg := config.New("admin", "usdc", "treasury", 9_000, 50)
	if err := s.SetConfig(ctx, cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	got, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if got.Admin != "admin" || got.DefaultAdvanceBps != 9_000 {
		t.Errorf("config: %+v", got)
	}

	// The store hands out copies.
	got.DefaultAdvanceBps = 1
	again, _ := s.GetConfig(ctx)
	if again.DefaultAdvanceBps != 9_000 {
		t.Error("GetConfig returned a shared pointer")
	}
}

func TestInvoiceCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetInvoice(ctx, 1); !errors.Is(err, factoring.ErrInvoiceNotFound) {
		t.Errorf("GetInvoice on empty: got %v", err)
	}

	inv := testInvoice(1)
	if err := s.CreateInvoice(ctx, inv); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if err := s.CreateInvoice(ctx, inv); !errors.Is(err, factoring.ErrInvoiceAlreadyExists) {
		t.Errorf("duplicate create: got %v", err)
	}

	got, err := s.GetInvoice(ctx, 1)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.PayerRef != "CORP-001" {
		t.Errorf("invoice: %+v", got)
	}

	// Mutating the returned copy does not leak into the store.
	got.Status = invoice.StatusSettled
	again, _ := s.GetInvoice(ctx, 1)
	if again.Status != invoice.StatusCreated {
		t.Error("GetInvoice returned a shared pointer")
	}

	got.Status = invoice.StatusCancelled
	if err := s.UpdateInvoice(ctx, got); err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}
	again, _ = s.GetInvoice(ctx, 1)
	if again.Status != invoice.StatusCancelled {
		t.Errorf("update not applied: %+v", again)
	}

	missing := testInvoice(99)
	if err := s.UpdateInvoice(ctx, missing); !errors.Is(err, factoring.ErrInvoiceNotFound) {
		t.Errorf("update missing: got %v", err)
	}
}

func TestAllocateInvoiceID(t *testing.T) {
	s := New()
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		got, err := s.AllocateInvoiceID(ctx)
		if err != nil {
			t.Fatalf("AllocateInvoiceID: %v", err)
		}
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
}

func TestCommitsAndStats(t *testing.T) {
	s := New()
	ctx := context.Background()

	inv := testInvoice(1)
	if err := s.CreateInvoice(ctx, inv); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if err := s.IncrementTotalInvoices(ctx); err != nil {
		t.Fatalf("IncrementTotalInvoices: %v", err)
	}

	now := time.Now().UTC()
	inv.Status = invoice.StatusFunded
	inv.Funder = "lender-1"
	inv.FundedAt = &now
	if err := s.CommitFunding(ctx, inv, types.Units(900)); err != nil {
		t.Fatalf("CommitFunding: %v", err)
	}

	rep := reputation.New("sme-1")
	rep.RecordSettled(types.Units(1000), true, 10, now)

	inv.Status = invoice.StatusSettled
	inv.SettledAt = &now
	if err := s.CommitSettlement(ctx, inv, rep, types.Units(1000)); err != nil {
		t.Fatalf("CommitSettlement: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalInvoices != 1 {
		t.Errorf("TotalInvoices: got %d, want 1", stats.TotalInvoices)
	}
	if stats.VolumeFunded != types.Units(900) {
		t.Errorf("VolumeFunded: got %v, want %v", stats.VolumeFunded, types.Units(900))
	}
	if stats.VolumeSettled != types.Units(1000) {
		t.Errorf("VolumeSettled: got %v, want %v", stats.VolumeSettled, types.Units(1000))
	}

	// The reputation landed with the settlement commit.
	gotRep, err := s.GetReputation(ctx, "sme-1")
	if err != nil {
		t.Fatalf("GetReputation: %v", err)
	}
	if gotRep.SettledInvoices != 1 {
		t.Errorf("reputation: %+v", gotRep)
	}

	gotInv, _ := s.GetInvoice(ctx, 1)
	if gotInv.Status != invoice.StatusSettled {
		t.Errorf("status: %q", gotInv.Status)
	}
}

func TestReputationRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetReputation(ctx, "sme-1"); !errors.Is(err, factoring.ErrReputationNotFound) {
		t.Errorf("GetReputation on empty: got %v", err)
	}

	rep := reputation.New("sme-1")
	rep.TotalInvoices = 3
	if err := s.SetReputation(ctx, rep); err != nil {
		t.Fatalf("SetReputation: %v", err)
	}

	got, err := s.GetReputation(ctx, "sme-1")
	if err != nil {
		t.Fatalf("GetReputation: %v", err)
	}
	if got.TotalInvoices != 3 || got.OnTimeRateBps != reputation.InitialOnTimeRateBps {
		t.Errorf("reputation: %+v", got)
	}
}

func TestListInvoicesFilters(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := uint64(1); i <= 4; i++ {
		inv := testInvoice(i)
		inv.Entity = types.NewEntityAt(base.Add(time.Duration(i) * time.Hour))
		if i == 4 {
			inv.Originator = "sme-2"
		}
		if i == 2 {
			inv.Status = invoice.StatusFunded
			inv.Funder = "lender-1"
		}
		if err := s.CreateInvoice(ctx, inv); err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}
	}

	tests := []struct {
		name string
		opts invoice.ListOpts
		want []uint64
	}{
		{"all sorted", invoice.ListOpts{}, []uint64{1, 2, 3, 4}},
		{"originator", invoice.ListOpts{Originator: "sme-1"}, []uint64{1, 2, 3}},
		{"funder", invoice.ListOpts{Funder: "lender-1"}, []uint64{2}},
		{"status", invoice.ListOpts{Status: invoice.StatusCreated}, []uint64{1, 3, 4}},
		{"created window", invoice.ListOpts{Start: base.Add(90 * time.Minute), End: base.Add(210 * time.Minute)}, []uint64{2, 3}},
		{"limit", invoice.ListOpts{Limit: 3}, []uint64{1, 2, 3}},
		{"offset", invoice.ListOpts{Limit: 3, Offset: 3}, []uint64{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListInvoices(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListInvoices: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d invoices, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("position %d: got %d, want %d", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}
