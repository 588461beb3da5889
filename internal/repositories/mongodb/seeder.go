package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/artifactng/wheelspin-backend/internal/config"
	"github.com/artifactng/wheelspin-backend/internal/models"
	"github.com/artifactng/wheelspin-backend/internal/repositories"
)

// PromotionSeeder initializes the promotion collections: the counters
// singleton, the per-range contestant count table, and the prize inventory.
type PromotionSeeder struct {
	db *mongo.Database
}

// NewPromotionSeeder creates a new PromotionSeeder
func NewPromotionSeeder(db *mongo.Database) *PromotionSeeder {
	return &PromotionSeeder{db: db}
}

// Seed resets the promotion state and writes a fresh one from the config.
// When clearTickets is true the ticket collection is wiped as well, which is
// only appropriate for a full promotion reset.
func (s *PromotionSeeder) Seed(ctx context.Context, promo config.PromotionConfig, clearTickets bool) error {
	for _, name := range []string{"counters", "contestant_counts", "prizes"} {
		if _, err := s.db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}
	if clearTickets {
		if _, err := s.db.Collection("tickets").DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("clear tickets: %w", err)
		}
	}

	_, err := s.db.Collection("counters").InsertOne(ctx, countersDoc{
		ID:                    countersDocID,
		TotalSpins:            0,
		GrandPrizeContestants: 0,
	})
	if err != nil {
		return fmt.Errorf("seed counters: %w", err)
	}

	counts := make([]interface{}, 0, len(promo.Ranges))
	for _, r := range promo.Ranges {
		counts = append(counts, contestantCountDoc{
			RangeStart: r.Start,
			RangeEnd:   r.End,
			Quota:      r.ContestantQuota,
			Count:      0,
		})
	}
	if _, err := s.db.Collection("contestant_counts").InsertMany(ctx, counts); err != nil {
		return fmt.Errorf("seed contestant counts: %w", err)
	}

	inventory := promo.BuildInventory()
	docs := make([]interface{}, 0, len(inventory))
	for _, rec := range inventory {
		docs = append(docs, rec)
	}
	if _, err := s.db.Collection("prizes").InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed prizes: %w", err)
	}

	return EnsureIndexes(ctx, s.db)
}

// SeedTickets registers the given codes as fresh tickets, skipping any that
// already exist.
func (s *PromotionSeeder) SeedTickets(ctx context.Context, codes []string) (int, error) {
	repo := NewTicketRepository(s.db)
	created := 0
	for _, code := range codes {
		err := repo.Create(ctx, &models.Ticket{Code: code})
		if errors.Is(err, repositories.ErrDuplicateCode) {
			// Duplicates are fine on re-seed.
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed ticket %q: %w", code, err)
		}
		created++
	}
	return created, nil
}
