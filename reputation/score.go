package reputation

import (
	"time"

	"github.com/xraph/factoring/types"
)

// Risk score bonuses. Each clears once the originator crosses the
// corresponding threshold.
const (
	// VolumeBonusThreshold is the cumulative settled volume above which the
	// volume bonus applies.
	VolumeBonusThreshold types.Money = 100_000 * types.MinorPerUnit

	// HistoryBonusThreshold is the settled-invoice count above which the
	// history bonus applies.
	HistoryBonusThreshold uint32 = 10

	bonusPoints uint32 = 100
)

// Score derives the 0–1000 risk score from behaviour aggregates.
// Lower is better. Subtractions saturate at zero.
func Score(onTimeRateBps uint32, totalVolume types.Money, settledInvoices uint32) uint32 {
	score := uint32(1000)
	score = saturatingSub(score, onTimeRateBps/10)
	if totalVolume.GreaterThan(VolumeBonusThreshold) {
		score = saturatingSub(score, bonusPoints)
	}
	if settledInvoices > HistoryBonusThreshold {
		score = saturatingSub(score, bonusPoints)
	}
	return score
}

func saturatingSub(a, b uint32) uint32 {
	if b >= a {
		return 0
	}
	return a - b
}

// RecordCreated notes a newly created invoice.
func (r *Reputation) RecordCreated(now time.Time) {
	r.TotalInvoices++
	r.TouchAt(now)
}

// RecordSettled folds a settlement into the aggregates and recomputes the
// risk score.
//
// The on-time rate is a running ratio over prior settlements: the stored
// rate is first expanded back into an on-time count, incremented when this
// settlement was on time, then re-divided. On the very first settlement the
// prior count is zero, so the stored initial rate carries through unchanged.
func (r *Reputation) RecordSettled(amount types.Money, onTime bool, settlementDays uint32, now time.Time) {
	prior := r.SettledInvoices
	r.SettledInvoices++
	r.TotalVolume = r.TotalVolume.Add(amount)

	if prior > 0 {
		onTimeCount := uint64(r.OnTimeRateBps) * uint64(prior) / 10_000
		if onTime {
			onTimeCount++
		}
		r.OnTimeRateBps = uint32(onTimeCount * 10_000 / uint64(r.SettledInvoices))
	}

	r.AvgSettlementDays = uint32((uint64(r.AvgSettlementDays)*uint64(prior) + uint64(settlementDays)) / uint64(r.SettledInvoices))

	r.RiskScore = Score(r.OnTimeRateBps, r.TotalVolume, r.SettledInvoices)
	r.TouchAt(now)
}
