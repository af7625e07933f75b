package reputation

import (
	"testing"
	"time"

	"github.com/xraph/factoring/types"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		rateBps  uint32
		volume   types.Money
		settled  uint32
		expected uint32
	}{
		{"perfect rate only", 10_000, 0, 0, 0},
		{"zero rate", 0, 0, 0, 1000},
		{"half rate", 5_000, 0, 0, 500},
		{"volume bonus", 0, types.Units(100_001), 0, 900},
		{"volume at threshold no bonus", 0, types.Units(100_000), 0, 1000},
		{"history bonus", 0, 0, 11, 900},
		{"history at threshold no bonus", 0, 0, 10, 1000},
		{"both bonuses", 0, types.Units(200_000), 20, 800},
		{"saturates at zero", 9_500, types.Units(200_000), 20, 0},
		{"perfect everything", 10_000, types.Units(200_000), 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.rateBps, tt.volume, tt.settled); got != tt.expected {
				t.Errorf("Score: got %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	r := New("sme-1")
	if r.Originator != "sme-1" {
		t.Errorf("Originator: got %q", r.Originator)
	}
	if r.OnTimeRateBps != InitialOnTimeRateBps {
		t.Errorf("OnTimeRateBps: got %d, want %d", r.OnTimeRateBps, InitialOnTimeRateBps)
	}
	if r.RiskScore != InitialRiskScore {
		t.Errorf("RiskScore: got %d, want %d", r.RiskScore, InitialRiskScore)
	}
	if r.TotalInvoices != 0 || r.SettledInvoices != 0 || !r.TotalVolume.IsZero() {
		t.Error("fresh record should have zero aggregates")
	}
}

func TestRecordCreated(t *testing.T) {
	r := New("sme-1")
	now := time.Now().UTC()

	r.RecordCreated(now)
	r.RecordCreated(now)

	if r.TotalInvoices != 2 {
		t.Errorf("TotalInvoices: got %d, want 2", r.TotalInvoices)
	}
	if r.SettledInvoices != 0 {
		t.Errorf("SettledInvoices: got %d, want 0", r.SettledInvoices)
	}
	if !r.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt: got %v, want %v", r.UpdatedAt, now)
	}
}

func TestRecordSettledFirst(t *testing.T) {
	now := time.Now().UTC()

	// The first settlement does not move the on-time rate: the running
	// ratio has no prior settlements to fold the outcome into, so the
	// initial rate carries through even when the settlement was late.
	tests := []struct {
		name   string
		onTime bool
	}{
		{"on time", true},
		{"late", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("sme-1")
			r.RecordCreated(now)
			r.RecordSettled(types.Units(1000), tt.onTime, 12, now)

			if r.SettledInvoices != 1 {
				t.Errorf("SettledInvoices: got %d, want 1", r.SettledInvoices)
			}
			if r.TotalVolume != types.Units(1000) {
				t.Errorf("TotalVolume: got %v, want %v", r.TotalVolume, types.Units(1000))
			}
			if r.OnTimeRateBps != InitialOnTimeRateBps {
				t.Errorf("OnTimeRateBps: got %d, want %d", r.OnTimeRateBps, InitialOnTimeRateBps)
			}
			if r.AvgSettlementDays != 12 {
				t.Errorf("AvgSettlementDays: got %d, want 12", r.AvgSettlementDays)
			}
			if r.RiskScore != 0 {
				t.Errorf("RiskScore: got %d, want 0", r.RiskScore)
			}
		})
	}
}

func TestRecordSettledRunningRate(t *testing.T) {
	now := time.Now().UTC()
	r := New("sme-1")

	// First settlement: rate stays at 10000.
	r.RecordSettled(types.Units(1000), true, 10, now)
	if r.OnTimeRateBps != 10_000 {
		t.Fatalf("after 1: got %d, want 10000", r.OnTimeRateBps)
	}

	// Second, late: one on-time of two = 5000.
	r.RecordSettled(types.Units(1000), false, 40, now)
	if r.OnTimeRateBps != 5_000 {
		t.Fatalf("after 2: got %d, want 5000", r.OnTimeRateBps)
	}

	// Third, on time: two of three = 6666.
	r.RecordSettled(types.Units(1000), true, 10, now)
	if r.OnTimeRateBps != 6_666 {
		t.Fatalf("after 3: got %d, want 6666", r.OnTimeRateBps)
	}

	if r.AvgSettlementDays != 20 {
		t.Errorf("AvgSettlementDays: got %d, want 20", r.AvgSettlementDays)
	}
	if r.TotalVolume != types.Units(3000) {
		t.Errorf("TotalVolume: got %v, want %v", r.TotalVolume, types.Units(3000))
	}
	if r.SettledInvoices != 3 {
		t.Errorf("SettledInvoices: got %d, want 3", r.SettledInvoices)
	}

	// Score: 1000 - 666 = 334, no bonuses yet.
	if r.RiskScore != 334 {
		t.Errorf("RiskScore: got %d, want 334", r.RiskScore)
	}
}

func TestRecordSettledBonuses(t *testing.T) {
	now := time.Now().UTC()
	r := New("sme-1")

	// Eleven on-time settlements of 10,000 units each crosses both
	// thresholds: volume 110,000 > 100,000 and count 11 > 10.
	for i := 0; i < 11; i++ {
		r.RecordSettled(types.Units(10_000), true, 5, now)
	}

	if r.OnTimeRateBps != 10_000 {
		t.Fatalf("OnTimeRateBps: got %d, want 10000", r.OnTimeRateBps)
	}
	if r.RiskScore != 0 {
		t.Errorf("RiskScore: got %d, want 0", r.RiskScore)
	}

	// A fully late originator at the same scale keeps the bonuses:
	// 1000 - 0 - 100 - 100 = 800.
	late := New("sme-2")
	for i := 0; i < 11; i++ {
		late.RecordSettled(types.Units(10_000), false, 90, now)
	}
	if late.OnTimeRateBps != 0 {
		t.Fatalf("late OnTimeRateBps: got %d, want 0", late.OnTimeRateBps)
	}
	if late.RiskScore != 800 {
		t.Errorf("late RiskScore: got %d, want 800", late.RiskScore)
	}
}
