package invoice

import (
	"testing"
	"time"

	"github.com/xraph/factoring/types"
)

func TestStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusCreated, false},
		{StatusFunded, false},
		{StatusSettled, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal: got %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestSettledOnTime(t *testing.T) {
	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	before := due.Add(-time.Hour)
	after := due.Add(time.Hour)

	tests := []struct {
		name      string
		settledAt *time.Time
		onTime    bool
	}{
		{"unsettled", nil, false},
		{"before due", &before, true},
		{"exactly due", &due, true},
		{"after due", &after, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invoice{DueDate: due, SettledAt: tt.settledAt}
			if got := inv.SettledOnTime(); got != tt.onTime {
				t.Errorf("SettledOnTime: got %v, want %v", got, tt.onTime)
			}
		})
	}
}

func TestSettlementDays(t *testing.T) {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		settled time.Duration
		want    uint32
	}{
		{"same day", 6 * time.Hour, 0},
		{"ten days", 10 * 24 * time.Hour, 10},
		{"partial day floors", 10*24*time.Hour + 23*time.Hour, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settledAt := created.Add(tt.settled)
			inv := &Invoice{
				Entity:    types.NewEntityAt(created),
				SettledAt: &settledAt,
			}
			if got := inv.SettlementDays(); got != tt.want {
				t.Errorf("SettlementDays: got %d, want %d", got, tt.want)
			}
		})
	}

	unsettled := &Invoice{Entity: types.NewEntityAt(created)}
	if got := unsettled.SettlementDays(); got != 0 {
		t.Errorf("unsettled SettlementDays: got %d, want 0", got)
	}
}

func TestFunded(t *testing.T) {
	inv := &Invoice{}
	if inv.Funded() {
		t.Error("invoice without funder reports funded")
	}
	inv.Funder = "lender-1"
	if !inv.Funded() {
		t.Error("invoice with funder reports unfunded")
	}
}
