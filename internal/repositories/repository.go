package repositories

import (
	"context"
	"errors"

	"github.com/artifactng/wheelspin-backend/internal/models"
)

var (
	// ErrTxnConflict reports that a transaction lost a write-write race and
	// was definitely not committed; it can be retried safely.
	ErrTxnConflict = errors.New("transaction conflict")

	// ErrCommitUnknown reports that a commit's outcome could not be
	// determined (for example a timeout at the commit point). The
	// transaction may or may not have committed; callers retrying must be
	// prepared to find their effects already applied.
	ErrCommitUnknown = errors.New("transaction commit result unknown")

	// ErrNotFound reports that the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateCode reports that a ticket code is already registered.
	ErrDuplicateCode = errors.New("duplicate ticket code")
)

// PromotionStore opens transactions against the promotion's persistent state.
// Everything a redemption reads and writes must go through a single Txn so the
// store can linearize concurrent redemptions.
type PromotionStore interface {
	Begin(ctx context.Context) (Txn, error)
}

// Txn is one atomic unit of work. Implementations must guarantee that two
// concurrent transactions cannot both consume the same last unit of a prize
// or the same spin number: one of them must fail Commit (or ApplyDeltas) with
// ErrTxnConflict.
type Txn interface {
	// ReadCounters returns the promotion counters, including the per-range
	// contestant counts.
	ReadCounters(ctx context.Context) (*models.PromotionCounters, error)

	// ReadInventory returns the prize records of the range starting at
	// rangeStart.
	ReadInventory(ctx context.Context, rangeStart int) ([]models.PrizeInventoryRecord, error)

	// ReadTicket returns the ticket with the given code, or ErrNotFound.
	ReadTicket(ctx context.Context, code string) (*models.Ticket, error)

	// WriteTicket persists the redeemed state of a ticket.
	WriteTicket(ctx context.Context, ticket *models.Ticket) error

	// ApplyDeltas applies the counter and inventory mutations of one
	// redemption. The counter delta's ExpectedTotalSpins acts as a
	// compare-and-set guard; a mismatch fails with ErrTxnConflict.
	ApplyDeltas(ctx context.Context, counter models.CounterDelta, inventory []models.InventoryDelta) error

	// Commit makes the transaction's effects durable, or fails with
	// ErrTxnConflict when the store detected a write-write race.
	Commit(ctx context.Context) error

	// Abort discards the transaction. Safe to call after a failed Commit.
	Abort(ctx context.Context) error
}

// TicketRepository covers the registration and reporting reads and writes that
// happen outside the redemption transaction.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	CreateMany(ctx context.Context, tickets []*models.Ticket) error
	FindByCode(ctx context.Context, code string) (*models.Ticket, error)
	// FindExistingCodes returns which of the given codes are already
	// registered.
	FindExistingCodes(ctx context.Context, codes []string) ([]string, error)
	// FindWinning returns redeemed tickets that won a named prize or were
	// drawn as grand-prize contestants, newest first.
	FindWinning(ctx context.Context) ([]*models.Ticket, error)
	Count(ctx context.Context) (int64, error)
}
