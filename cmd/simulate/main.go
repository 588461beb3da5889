package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/artifactng/wheelspin-backend/internal/config"
	"github.com/artifactng/wheelspin-backend/internal/engine"
	"github.com/artifactng/wheelspin-backend/internal/models"
	"github.com/artifactng/wheelspin-backend/internal/repositories/memstore"
	"github.com/artifactng/wheelspin-backend/internal/services"
)

// A dry run of the promotion against an in-memory store. Useful for sanity
// checking the range table before seeding a real deployment: quotas must be
// hit exactly at range boundaries and never exceeded.
func main() {
	spins := flag.Int("spins", 100, "number of spins to simulate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	verbose := flag.Bool("v", false, "log every spin")
	flag.Parse()

	promo := config.PromotionConfig{
		MaxSpins:          256000,
		ContestantCap:     16,
		MaxRedeemAttempts: 5,
		GrandPrizeName:    "₦1,000,000",
		PrizeNames:        config.DefaultPrizeNames(),
		Ranges:            config.DefaultRanges(),
	}
	if err := promo.Validate(); err != nil {
		log.Fatalf("Invalid promotion config: %v", err)
	}

	store := memstore.New()
	store.SeedPromotion(promo.Ranges, promo.BuildInventory())

	svc := services.NewRedemptionService(store, promo, engine.NewLockedRand(*seed))
	ctx := context.Background()

	fmt.Printf("=== Simulating %d spins (seed %d) ===\n\n", *spins, *seed)

	contestants, prizes, tryAgain := 0, 0, 0
	breakdown := map[string]int{}

	for i := 1; i <= *spins; i++ {
		code := fmt.Sprintf("SIM%06d", i)
		if err := store.Create(ctx, &models.Ticket{Code: code}); err != nil {
			log.Fatalf("Failed to create ticket %s: %v", code, err)
		}

		result, err := svc.Redeem(ctx, code)
		if err == services.ErrPromotionEnded {
			fmt.Printf("Promotion ended after %d spins\n", i-1)
			break
		}
		if err != nil {
			log.Fatalf("Spin %d failed: %v", i, err)
		}

		switch {
		case result.IsGrandPrizeContestant:
			contestants++
		case result.Outcome == models.OutcomeTryAgain:
			tryAgain++
		default:
			prizes++
		}
		breakdown[result.Outcome]++

		if *verbose {
			fmt.Printf("Spin %6d: %s - %s\n", i, code, result.Outcome)
		}
	}

	fmt.Printf("\n=== Final Statistics ===\n\n")
	fmt.Printf("Total spins:             %d\n", store.Counters().TotalSpins)
	fmt.Printf("Grand prize contestants: %d (cap %d)\n", contestants, promo.ContestantCap)
	fmt.Printf("Named prizes won:        %d\n", prizes)
	fmt.Printf("Try again results:       %d\n", tryAgain)

	fmt.Printf("\nOutcome breakdown:\n")
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return breakdown[names[i]] > breakdown[names[j]] })
	for _, name := range names {
		fmt.Printf("  %-24s %d\n", name, breakdown[name])
	}

	fmt.Printf("\nRemaining inventory:\n")
	for _, rec := range store.Inventory() {
		if rec.Remaining == rec.TotalCount {
			continue
		}
		fmt.Printf("  [%d-%d] %-24s %d/%d\n", rec.RangeStart, rec.RangeEnd, rec.Name, rec.Remaining, rec.TotalCount)
	}

	counters := store.Counters()
	fmt.Printf("\nContestant tracking:\n")
	for _, r := range promo.Ranges {
		if count, ok := counters.RangeContestantCounts[r.Start]; ok && count > 0 {
			fmt.Printf("  [%d-%d] %d/%d contestants\n", r.Start, r.End, count, r.ContestantQuota)
		}
	}
	fmt.Printf("  Total: %d/%d\n", counters.GrandPrizeContestants, promo.ContestantCap)
}
