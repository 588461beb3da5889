package models

// RangeSpec is the static configuration for one contiguous block of spin
// numbers: how many named-prize units it carries, how many grand-prize
// contestant slots it may fill, and the odds advertised to players.
// Ranges are contiguous, non-overlapping, and jointly cover [1, MaxSpins].
type RangeSpec struct {
	Start           int     `mapstructure:"start" json:"start"`
	End             int     `mapstructure:"end" json:"end"`
	GiftQuota       int     `mapstructure:"giftQuota" json:"giftQuota"`
	ContestantQuota int     `mapstructure:"contestantQuota" json:"contestantQuota"`
	BaseProbability float64 `mapstructure:"baseProbability" json:"baseProbability"`
}

// Contains reports whether the given spin number falls inside this range.
func (r RangeSpec) Contains(spinNumber int) bool {
	return spinNumber >= r.Start && spinNumber <= r.End
}

// Size returns the number of spins the range spans.
func (r RangeSpec) Size() int {
	return r.End - r.Start + 1
}
