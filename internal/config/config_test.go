package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artifactng/wheelspin-backend/internal/models"
)

func validPromo() PromotionConfig {
	return PromotionConfig{
		MaxSpins:          200,
		ContestantCap:     16,
		MaxRedeemAttempts: 5,
		PrizeNames:        []string{"Phone", "Hoodie"},
		Ranges: []models.RangeSpec{
			{Start: 1, End: 100, GiftQuota: 10, ContestantQuota: 4},
			{Start: 101, End: 200, GiftQuota: 4, ContestantQuota: 2},
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validPromo().Validate())
}

func TestValidate_DefaultTable(t *testing.T) {
	promo := PromotionConfig{
		MaxSpins:          256000,
		ContestantCap:     16,
		MaxRedeemAttempts: 5,
		PrizeNames:        DefaultPrizeNames(),
		Ranges:            DefaultRanges(),
	}
	require.NoError(t, promo.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PromotionConfig)
	}{
		{"first range not at 1", func(p *PromotionConfig) { p.Ranges[0].Start = 2 }},
		{"gap between ranges", func(p *PromotionConfig) { p.Ranges[1].Start = 102 }},
		{"overlapping ranges", func(p *PromotionConfig) { p.Ranges[1].Start = 100 }},
		{"inverted range", func(p *PromotionConfig) { p.Ranges[1].End = 50 }},
		{"coverage short of maxSpins", func(p *PromotionConfig) { p.MaxSpins = 300 }},
		{"negative quota", func(p *PromotionConfig) { p.Ranges[0].GiftQuota = -1 }},
		{"quotas exceed range size", func(p *PromotionConfig) {
			p.Ranges[1].GiftQuota = 60
			p.Ranges[1].ContestantQuota = 50
		}},
		{"no ranges", func(p *PromotionConfig) { p.Ranges = nil }},
		{"no prize names", func(p *PromotionConfig) { p.PrizeNames = nil }},
		{"zero maxSpins", func(p *PromotionConfig) { p.MaxSpins = 0 }},
		{"zero contestant cap", func(p *PromotionConfig) { p.ContestantCap = 0 }},
		{"zero redeem attempts", func(p *PromotionConfig) { p.MaxRedeemAttempts = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promo := validPromo()
			tt.mutate(&promo)
			assert.Error(t, promo.Validate())
		})
	}
}

func TestRangeFor(t *testing.T) {
	promo := validPromo()

	r, ok := promo.RangeFor(1)
	require.True(t, ok)
	assert.Equal(t, 1, r.Start)

	r, ok = promo.RangeFor(100)
	require.True(t, ok)
	assert.Equal(t, 1, r.Start)

	r, ok = promo.RangeFor(101)
	require.True(t, ok)
	assert.Equal(t, 101, r.Start)

	_, ok = promo.RangeFor(201)
	assert.False(t, ok)

	_, ok = promo.RangeFor(0)
	assert.False(t, ok)
}

func TestBuildInventory(t *testing.T) {
	promo := validPromo()
	records := promo.BuildInventory()

	// Two prize names per range, both ranges have a gift quota.
	require.Len(t, records, 4)

	byRange := map[int]int{}
	for _, rec := range records {
		assert.Equal(t, rec.TotalCount, rec.Remaining)
		assert.Positive(t, rec.TotalCount)
		byRange[rec.RangeStart] += rec.TotalCount
	}
	assert.Equal(t, 10, byRange[1], "10 gifts over 2 names, 5 each")
	assert.Equal(t, 4, byRange[101])
}

func TestBuildInventory_SkipsGiftlessRanges(t *testing.T) {
	promo := validPromo()
	promo.Ranges[1].GiftQuota = 0

	for _, rec := range promo.BuildInventory() {
		assert.NotEqual(t, 101, rec.RangeStart)
	}
}

func TestBuildInventory_GrandPrizeUnit(t *testing.T) {
	promo := validPromo()
	promo.GrandPrizeName = "₦1,000,000"

	records := promo.BuildInventory()

	grand := 0
	firstRangeTotal := 0
	for _, rec := range records {
		if rec.Name == "₦1,000,000" {
			grand++
			assert.Equal(t, 1, rec.TotalCount)
			assert.Equal(t, 1, rec.RangeStart, "the grand prize lives in the first range only")
		}
		if rec.RangeStart == 1 {
			firstRangeTotal += rec.TotalCount
		}
	}
	assert.Equal(t, 1, grand)
	// 1 grand unit plus 9 remaining gifts over 2 names, 4 each.
	assert.Equal(t, 9, firstRangeTotal)
}

func TestBuildInventory_EveryNameGetsAUnit(t *testing.T) {
	promo := validPromo()
	promo.PrizeNames = []string{"A", "B", "C", "D", "E", "F"}
	promo.Ranges[1].GiftQuota = 4

	names := map[string]bool{}
	for _, rec := range promo.BuildInventory() {
		if rec.RangeStart == 101 {
			names[rec.Name] = true
			assert.Equal(t, 1, rec.TotalCount)
		}
	}
	assert.Len(t, names, 6)
}
