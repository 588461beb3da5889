package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"github.com/artifactng/wheelspin-backend/internal/models"
	"github.com/artifactng/wheelspin-backend/internal/repositories"
)

// Compile-time check to ensure TicketServiceImpl implements TicketService
var _ TicketService = (*TicketServiceImpl)(nil)

// minTicketCodeLength matches the registration collaborator's code format.
const minTicketCodeLength = 3

// TicketServiceImpl handles ticket registration and lookup. Registration is
// all-or-nothing per batch: one malformed or duplicate code rejects the whole
// request so the caller can fix and resubmit it.
type TicketServiceImpl struct {
	ticketRepo repositories.TicketRepository
}

// NewTicketService creates a new TicketServiceImpl
func NewTicketService(ticketRepo repositories.TicketRepository) *TicketServiceImpl {
	return &TicketServiceImpl{ticketRepo: ticketRepo}
}

// RegisterTickets creates fresh unredeemed tickets for the given codes.
func (s *TicketServiceImpl) RegisterTickets(ctx context.Context, codes []string) ([]*models.Ticket, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInvalidTicketCode)
	}

	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if len(code) < minTicketCodeLength {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTicketCode, code)
		}
		if seen[code] {
			return nil, &DuplicateTicketsError{Codes: []string{code}}
		}
		seen[code] = true
	}

	existing, err := s.ticketRepo.FindExistingCodes(ctx, codes)
	if err != nil {
		slog.Error("failed to check for existing tickets", "error", err)
		return nil, fmt.Errorf("check existing tickets: %w", err)
	}
	if len(existing) > 0 {
		return nil, &DuplicateTicketsError{Codes: existing}
	}

	tickets := make([]*models.Ticket, 0, len(codes))
	for _, code := range codes {
		tickets = append(tickets, &models.Ticket{Code: code})
	}
	if err := s.ticketRepo.CreateMany(ctx, tickets); err != nil {
		// A concurrent registration can slip in between the check and the
		// insert; the unique index turns that into a duplicate error.
		if errors.Is(err, repositories.ErrDuplicateCode) {
			return nil, &DuplicateTicketsError{Codes: codes}
		}
		slog.Error("failed to register tickets", "error", err, "count", len(codes))
		return nil, fmt.Errorf("register tickets: %w", err)
	}

	slog.Info("tickets registered", "count", len(tickets))
	return tickets, nil
}

// VerifyTicket returns the ticket for a code, or ErrUnknownTicket.
func (s *TicketServiceImpl) VerifyTicket(ctx context.Context, code string) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnknownTicket
		}
		return nil, fmt.Errorf("verify ticket: %w", err)
	}
	return ticket, nil
}
