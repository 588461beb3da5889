package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/exp/slog"

	"github.com/artifactng/wheelspin-backend/internal/config"
	"github.com/artifactng/wheelspin-backend/internal/engine"
	"github.com/artifactng/wheelspin-backend/internal/models"
	"github.com/artifactng/wheelspin-backend/internal/repositories"
	"github.com/artifactng/wheelspin-backend/internal/utils"
)

// Compile-time check to ensure RedemptionServiceImpl implements RedemptionService
var _ RedemptionService = (*RedemptionServiceImpl)(nil)

const (
	retryBaseDelay = 10 * time.Millisecond
	retryMaxDelay  = 500 * time.Millisecond
)

// RedemptionServiceImpl coordinates one spin per ticket: it validates the
// ticket, obtains the next spin number, invokes the allocation engine, and
// persists the decision — all inside a single store transaction. Conflicting
// transactions are benign contention and retried with backoff; a circuit
// breaker turns a run of real store faults into fast failures.
type RedemptionServiceImpl struct {
	store   repositories.PromotionStore
	promo   config.PromotionConfig
	rng     engine.Rand
	breaker *gobreaker.CircuitBreaker
}

// NewRedemptionService creates a new RedemptionServiceImpl
func NewRedemptionService(store repositories.PromotionStore, promo config.PromotionConfig, rng engine.Rand) *RedemptionServiceImpl {
	settings := gobreaker.Settings{
		Name:    "promotion-store",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// Expected outcomes and benign contention must not trip the breaker;
		// only real store faults count as failures.
		IsSuccessful: func(err error) bool {
			switch {
			case err == nil,
				errors.Is(err, repositories.ErrTxnConflict),
				errors.Is(err, repositories.ErrCommitUnknown),
				errors.Is(err, ErrUnknownTicket),
				errors.Is(err, ErrAlreadyRedeemed),
				errors.Is(err, ErrPromotionEnded):
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &RedemptionServiceImpl{
		store:   store,
		promo:   promo,
		rng:     rng,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Redeem spends a ticket on one spin. Transaction conflicts are retried up to
// the configured attempt budget; everything else is returned as-is.
func (s *RedemptionServiceImpl) Redeem(ctx context.Context, ticketCode string) (*models.RedemptionResult, error) {
	if ticketCode == "" {
		return nil, ErrUnknownTicket
	}

	// After a commit whose outcome was unknown, finding the ticket redeemed
	// means our own earlier attempt may have landed; a definite conflict
	// never does.
	afterUnknownCommit := false
	for attempt := 1; attempt <= s.promo.MaxRedeemAttempts; attempt++ {
		result, err := s.redeemOnce(ctx, ticketCode, afterUnknownCommit)
		if !errors.Is(err, repositories.ErrTxnConflict) && !errors.Is(err, repositories.ErrCommitUnknown) {
			return result, err
		}
		if errors.Is(err, repositories.ErrCommitUnknown) {
			afterUnknownCommit = true
		}

		slog.Info("redemption conflict, retrying", "code", ticketCode, "attempt", attempt)
		if err := utils.SleepContext(ctx, utils.Backoff(attempt, retryBaseDelay, retryMaxDelay)); err != nil {
			return nil, fmt.Errorf("redemption cancelled: %w", err)
		}
	}

	slog.Error("redemption retries exhausted", "code", ticketCode, "attempts", s.promo.MaxRedeemAttempts)
	return nil, ErrRetriesExhausted
}

func (s *RedemptionServiceImpl) redeemOnce(ctx context.Context, ticketCode string, afterUnknownCommit bool) (*models.RedemptionResult, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.attempt(ctx, ticketCode, afterUnknownCommit)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrStoreUnavailable
		}
		return nil, err
	}
	return out.(*models.RedemptionResult), nil
}

// attempt runs one redemption transaction end to end. Any error aborts the
// transaction entirely: the ticket stays unredeemed and no counter moves.
func (s *RedemptionServiceImpl) attempt(ctx context.Context, ticketCode string, afterUnknownCommit bool) (*models.RedemptionResult, error) {
	txn, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin redemption transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if abortErr := txn.Abort(ctx); abortErr != nil {
				slog.Error("failed to abort redemption transaction", "error", abortErr, "code", ticketCode)
			}
		}
	}()

	counters, err := txn.ReadCounters(ctx)
	if err != nil {
		return nil, err
	}

	// The ticket is inspected before the promotion-ended gate: a ticket
	// redeemed by an earlier attempt whose commit acknowledgement was lost
	// must resolve to its persisted outcome even when that very commit
	// consumed the final spin.
	ticket, err := txn.ReadTicket(ctx, ticketCode)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnknownTicket
		}
		return nil, err
	}
	if ticket.Redeemed {
		if afterUnknownCommit {
			// A previous attempt's commit may have landed before its
			// acknowledgement was lost; the persisted outcome is this
			// caller's result, not a new failure.
			return resultFromTicket(ticket, s.promo.MaxSpins), nil
		}
		return nil, ErrAlreadyRedeemed
	}

	if counters.TotalSpins >= s.promo.MaxSpins {
		return nil, ErrPromotionEnded
	}

	spinNumber := counters.TotalSpins + 1
	snap := engine.Snapshot{Counters: *counters}
	if r, ok := engine.ResolveRange(spinNumber, s.promo.Ranges); ok {
		snap.Inventory, err = txn.ReadInventory(ctx, r.Start)
		if err != nil {
			return nil, err
		}
	}

	outcome, ok := engine.Decide(spinNumber, s.promo.Ranges, s.promo.ContestantCap, snap, s.rng)
	if !ok {
		return nil, ErrPromotionEnded
	}

	outcome.CounterDelta.ExpectedTotalSpins = counters.TotalSpins
	outcome.CounterDelta.SpinIncrement = 1
	if err := txn.ApplyDeltas(ctx, outcome.CounterDelta, outcome.InventoryDeltas); err != nil {
		return nil, err
	}

	ticket.Redeemed = true
	ticket.SpinNumber = spinNumber
	ticket.Outcome = outcomeLabel(outcome)
	ticket.IsGrandPrizeContestant = outcome.Kind == engine.OutcomeGrandPrize
	ticket.UpdatedAt = time.Now()
	if err := txn.WriteTicket(ctx, ticket); err != nil {
		return nil, err
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true

	slog.Info("redemption processed",
		"code", ticketCode,
		"spin", spinNumber,
		"outcome", ticket.Outcome,
		"grandPrizeContestant", ticket.IsGrandPrizeContestant,
	)
	return resultFromTicket(ticket, s.promo.MaxSpins), nil
}

func outcomeLabel(outcome engine.Outcome) string {
	switch outcome.Kind {
	case engine.OutcomeGrandPrize:
		return models.OutcomeGrandPrizeContestant
	case engine.OutcomeNamedPrize:
		return outcome.PrizeName
	default:
		return models.OutcomeTryAgain
	}
}

func resultFromTicket(ticket *models.Ticket, maxSpins int) *models.RedemptionResult {
	return &models.RedemptionResult{
		Outcome:                ticket.Outcome,
		IsGrandPrizeContestant: ticket.IsGrandPrizeContestant,
		SpinNumber:             ticket.SpinNumber,
		RemainingSpins:         maxSpins - ticket.SpinNumber,
	}
}
