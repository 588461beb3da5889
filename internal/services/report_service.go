package services

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"github.com/artifactng/wheelspin-backend/internal/config"
	"github.com/artifactng/wheelspin-backend/internal/models"
	"github.com/artifactng/wheelspin-backend/internal/repositories"
)

// Compile-time check to ensure ReportServiceImpl implements ReportService
var _ ReportService = (*ReportServiceImpl)(nil)

// ReportServiceImpl produces the admin dashboard views. Reads go through a
// store transaction so the counters and inventory come from one snapshot.
type ReportServiceImpl struct {
	store      repositories.PromotionStore
	ticketRepo repositories.TicketRepository
	promo      config.PromotionConfig
}

// NewReportService creates a new ReportServiceImpl
func NewReportService(store repositories.PromotionStore, ticketRepo repositories.TicketRepository, promo config.PromotionConfig) *ReportServiceImpl {
	return &ReportServiceImpl{store: store, ticketRepo: ticketRepo, promo: promo}
}

// GetStats returns the promotion's progress counters and inventory.
func (s *ReportServiceImpl) GetStats(ctx context.Context) (*models.PromotionStats, error) {
	txn, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin stats read: %w", err)
	}
	// Read-only: always abort.
	defer func() {
		if err := txn.Abort(ctx); err != nil {
			slog.Error("failed to abort stats read", "error", err)
		}
	}()

	counters, err := txn.ReadCounters(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.PromotionStats{
		TotalSpins:            counters.TotalSpins,
		RemainingSpins:        s.promo.MaxSpins - counters.TotalSpins,
		GrandPrizeContestants: counters.GrandPrizeContestants,
		ContestantCap:         s.promo.ContestantCap,
	}

	for _, r := range s.promo.Ranges {
		inventory, err := txn.ReadInventory(ctx, r.Start)
		if err != nil {
			return nil, err
		}
		remaining, total := 0, 0
		for _, rec := range inventory {
			remaining += rec.Remaining
			total += rec.TotalCount
		}
		stats.Inventory = append(stats.Inventory, inventory...)
		stats.Ranges = append(stats.Ranges, models.RangeStats{
			Start:           r.Start,
			End:             r.End,
			ContestantQuota: r.ContestantQuota,
			ContestantCount: counters.RangeContestantCounts[r.Start],
			BaseProbability: r.BaseProbability,
			PrizesRemaining: remaining,
			PrizesTotal:     total,
		})
	}
	return stats, nil
}

// GetWinningTickets returns winners and grand-prize contestants, newest first.
func (s *ReportServiceImpl) GetWinningTickets(ctx context.Context) ([]*models.Ticket, error) {
	tickets, err := s.ticketRepo.FindWinning(ctx)
	if err != nil {
		return nil, fmt.Errorf("find winning tickets: %w", err)
	}
	return tickets, nil
}
