package models

// PromotionCounters is the singleton set of running totals for the promotion.
// TotalSpins advances by exactly one per committed redemption and is the CAS
// guard that linearizes concurrent redemptions at the store.
// GrandPrizeContestants always equals the sum of RangeContestantCounts.
type PromotionCounters struct {
	TotalSpins            int         `bson:"totalSpins" json:"totalSpins"`
	GrandPrizeContestants int         `bson:"grandPrizeContestants" json:"grandPrizeContestants"`
	RangeContestantCounts map[int]int `bson:"-" json:"rangeContestantCounts"`
}

// CounterDelta describes the counter mutations of one redemption.
// ExpectedTotalSpins carries the TotalSpins value observed when the decision
// was made; the store must refuse the delta if the live value differs.
type CounterDelta struct {
	ExpectedTotalSpins   int
	SpinIncrement        int
	ContestantRangeStart int
	ContestantIncrement  int
}
