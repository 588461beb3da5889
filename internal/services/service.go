package services

import (
	"context"

	"github.com/artifactng/wheelspin-backend/internal/models"
)

// RedemptionService defines the interface for spin redemption
type RedemptionService interface {
	// Redeem spends a ticket on one spin and returns the outcome. Transient
	// store conflicts are retried internally; the errors it returns are
	// terminal for the request.
	Redeem(ctx context.Context, ticketCode string) (*models.RedemptionResult, error)
}

// TicketService defines the interface for ticket registration and lookup
type TicketService interface {
	// RegisterTickets creates fresh tickets for the given codes. The whole
	// batch is rejected if any code is malformed or already registered.
	RegisterTickets(ctx context.Context, codes []string) ([]*models.Ticket, error)

	// VerifyTicket returns the ticket for a code, or ErrUnknownTicket.
	VerifyTicket(ctx context.Context, code string) (*models.Ticket, error)
}

// ReportService defines the interface for admin reporting
type ReportService interface {
	// GetStats returns the promotion's progress counters and inventory.
	GetStats(ctx context.Context) (*models.PromotionStats, error)

	// GetWinningTickets returns redeemed winners and grand-prize
	// contestants, newest first.
	GetWinningTickets(ctx context.Context) ([]*models.Ticket, error)
}
