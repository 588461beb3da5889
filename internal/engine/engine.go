// Package engine implements the spin-allocation decision. Decide is a pure
// function over a snapshot of the promotion counters and the active range's
// prize inventory: it performs no I/O and returns the outcome together with
// the exact deltas the caller must persist atomically.
package engine

import (
	"github.com/artifactng/wheelspin-backend/internal/models"
)

// OutcomeKind classifies the result of one spin.
type OutcomeKind string

const (
	// OutcomeGrandPrize marks a spin drawn into the grand-prize contestant pool.
	OutcomeGrandPrize OutcomeKind = "GRAND_PRIZE"
	// OutcomeNamedPrize marks a spin that won a unit of named-prize inventory.
	OutcomeNamedPrize OutcomeKind = "NAMED_PRIZE"
	// OutcomeNoWin marks a spin that won nothing.
	OutcomeNoWin OutcomeKind = "NO_WIN"
)

// Outcome carries the decision and the inventory/counter deltas it requires.
// A NoWin outcome carries no deltas beyond the spin-counter advance.
type Outcome struct {
	Kind            OutcomeKind
	PrizeName       string
	CounterDelta    models.CounterDelta
	InventoryDeltas []models.InventoryDelta
}

// Snapshot is the transactional read the decision is computed against.
// Inventory holds the prize records of the range the spin falls in.
type Snapshot struct {
	Counters  models.PromotionCounters
	Inventory []models.PrizeInventoryRecord
}

// ResolveRange locates the range containing the given spin number.
func ResolveRange(spinNumber int, ranges []models.RangeSpec) (models.RangeSpec, bool) {
	for _, r := range ranges {
		if r.Contains(spinNumber) {
			return r, true
		}
	}
	return models.RangeSpec{}, false
}

// Decide computes the outcome of one spin. The second return value is false
// when the spin number falls outside every configured range, which the caller
// must treat as the promotion having ended rather than as a normal no-win.
//
// The draw is a finite-population (hypergeometric) allocation: each win
// probability is remaining-wins over remaining-spins in the range, so the
// quotas are met exactly by the range's last spin rather than on average.
// When only as many spins remain as unmet slots the ratio reaches 1.0 and the
// win is forced; that property must not be special-cased away.
//
// The grand-prize contestant draw runs first and short-circuits the named
// prize draw: a single spin never produces both. The two draws consume
// independent random values.
func Decide(spinNumber int, ranges []models.RangeSpec, contestantCap int, snap Snapshot, rng Rand) (Outcome, bool) {
	r, ok := ResolveRange(spinNumber, ranges)
	if !ok {
		return Outcome{Kind: OutcomeNoWin}, false
	}

	// Slots remaining in the range, inclusive of the current spin.
	remainingSlots := r.End - spinNumber + 1

	rangeCount := snap.Counters.RangeContestantCounts[r.Start]
	if rangeCount < r.ContestantQuota && snap.Counters.GrandPrizeContestants < contestantCap {
		remainingContestantSlots := r.ContestantQuota - rangeCount
		p := float64(remainingContestantSlots) / float64(remainingSlots)
		if rng.Float64() < p {
			return Outcome{
				Kind: OutcomeGrandPrize,
				CounterDelta: models.CounterDelta{
					ContestantRangeStart: r.Start,
					ContestantIncrement:  1,
				},
			}, true
		}
	}

	candidates := make([]models.PrizeInventoryRecord, 0, len(snap.Inventory))
	totalRemaining := 0
	for _, rec := range snap.Inventory {
		if rec.RangeStart == r.Start && rec.Remaining > 0 {
			candidates = append(candidates, rec)
			totalRemaining += rec.Remaining
		}
	}
	if totalRemaining == 0 {
		return Outcome{Kind: OutcomeNoWin}, true
	}

	p := float64(totalRemaining) / float64(remainingSlots)
	if rng.Float64() >= p {
		return Outcome{Kind: OutcomeNoWin}, true
	}

	pick := candidates[rng.Intn(len(candidates))]
	return Outcome{
		Kind:      OutcomeNamedPrize,
		PrizeName: pick.Name,
		InventoryDeltas: []models.InventoryDelta{
			{PrizeName: pick.Name, RangeStart: r.Start, Decrement: 1},
		},
	}, true
}
