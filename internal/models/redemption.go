package models

// RedemptionResult is what a successful spin returns to the caller.
type RedemptionResult struct {
	Outcome                string `json:"prize"`
	IsGrandPrizeContestant bool   `json:"isGrandPrizeContestant"`
	SpinNumber             int    `json:"spinNumber"`
	RemainingSpins         int    `json:"remainingSpins"`
}

// RangeStats reports the contestant progress and inventory of one range for
// the admin dashboard.
type RangeStats struct {
	Start           int     `json:"start"`
	End             int     `json:"end"`
	ContestantQuota int     `json:"contestantQuota"`
	ContestantCount int     `json:"contestantCount"`
	BaseProbability float64 `json:"baseProbability"`
	PrizesRemaining int     `json:"prizesRemaining"`
	PrizesTotal     int     `json:"prizesTotal"`
}

// PromotionStats is the admin dashboard payload.
type PromotionStats struct {
	TotalSpins            int                    `json:"totalSpins"`
	RemainingSpins        int                    `json:"remainingSpins"`
	GrandPrizeContestants int                    `json:"grandPrizeContestants"`
	ContestantCap         int                    `json:"contestantCap"`
	Ranges                []RangeStats           `json:"ranges"`
	Inventory             []PrizeInventoryRecord `json:"inventory"`
}
