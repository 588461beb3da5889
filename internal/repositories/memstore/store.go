// Package memstore is an in-memory implementation of the promotion store with
// the same optimistic-concurrency semantics as the MongoDB one: transactions
// read a snapshot and validate their compare-and-set guards at commit, failing
// with ErrTxnConflict when another transaction got there first. It backs the
// test suite and the offline simulation binary.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/artifactng/wheelspin-backend/internal/models"
	"github.com/artifactng/wheelspin-backend/internal/repositories"
)

type prizeKey struct {
	name       string
	rangeStart int
}

// Store holds the whole promotion state behind one mutex.
type Store struct {
	mu             sync.Mutex
	counters       models.PromotionCounters
	quotas         map[int]int
	inventory      map[prizeKey]models.PrizeInventoryRecord
	tickets        map[string]models.Ticket
	failCommits    int
	unknownCommits int
}

var (
	_ repositories.PromotionStore   = (*Store)(nil)
	_ repositories.TicketRepository = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		counters:  models.PromotionCounters{RangeContestantCounts: map[int]int{}},
		quotas:    map[int]int{},
		inventory: map[prizeKey]models.PrizeInventoryRecord{},
		tickets:   map[string]models.Ticket{},
	}
}

// SeedPromotion resets counters and installs the given range quotas and prize
// inventory.
func (s *Store) SeedPromotion(ranges []models.RangeSpec, inventory []models.PrizeInventoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters = models.PromotionCounters{RangeContestantCounts: map[int]int{}}
	s.quotas = map[int]int{}
	s.inventory = map[prizeKey]models.PrizeInventoryRecord{}
	for _, r := range ranges {
		s.counters.RangeContestantCounts[r.Start] = 0
		s.quotas[r.Start] = r.ContestantQuota
	}
	for _, rec := range inventory {
		s.inventory[prizeKey{rec.Name, rec.RangeStart}] = rec
	}
}

// FailNextCommits makes the next n commits fail with ErrTxnConflict. Used by
// tests to exercise the coordinator's retry path.
func (s *Store) FailNextCommits(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCommits = n
}

// ReportNextCommitsUnknown makes the next n commits apply their effects but
// report ErrCommitUnknown, imitating a timeout at the commit point.
func (s *Store) ReportNextCommitsUnknown(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unknownCommits = n
}

// Counters returns a copy of the committed counters.
func (s *Store) Counters() models.PromotionCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countersCopyLocked()
}

// Inventory returns a copy of the committed inventory, sorted for stable
// inspection.
func (s *Store) Inventory() []models.PrizeInventoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]models.PrizeInventoryRecord, 0, len(s.inventory))
	for _, rec := range s.inventory {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].RangeStart != records[j].RangeStart {
			return records[i].RangeStart < records[j].RangeStart
		}
		return records[i].Name < records[j].Name
	})
	return records
}

func (s *Store) countersCopyLocked() models.PromotionCounters {
	counts := make(map[int]int, len(s.counters.RangeContestantCounts))
	for k, v := range s.counters.RangeContestantCounts {
		counts[k] = v
	}
	return models.PromotionCounters{
		TotalSpins:            s.counters.TotalSpins,
		GrandPrizeContestants: s.counters.GrandPrizeContestants,
		RangeContestantCounts: counts,
	}
}

// Begin snapshots the committed state. Writes are buffered in the transaction
// and validated on Commit.
func (s *Store) Begin(ctx context.Context) (repositories.Txn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv := make(map[prizeKey]models.PrizeInventoryRecord, len(s.inventory))
	for k, v := range s.inventory {
		inv[k] = v
	}
	return &txn{
		store:     s,
		counters:  s.countersCopyLocked(),
		inventory: inv,
	}, nil
}

type txn struct {
	store     *Store
	counters  models.PromotionCounters
	inventory map[prizeKey]models.PrizeInventoryRecord

	pendingTicket    *models.Ticket
	pendingCounter   *models.CounterDelta
	pendingInventory []models.InventoryDelta
	done             bool
}

func (t *txn) ReadCounters(ctx context.Context) (*models.PromotionCounters, error) {
	c := t.counters
	return &c, nil
}

func (t *txn) ReadInventory(ctx context.Context, rangeStart int) ([]models.PrizeInventoryRecord, error) {
	var records []models.PrizeInventoryRecord
	for _, rec := range t.inventory {
		if rec.RangeStart == rangeStart {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func (t *txn) ReadTicket(ctx context.Context, code string) (*models.Ticket, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	ticket, ok := t.store.tickets[code]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &ticket, nil
}

func (t *txn) WriteTicket(ctx context.Context, ticket *models.Ticket) error {
	copied := *ticket
	t.pendingTicket = &copied
	return nil
}

func (t *txn) ApplyDeltas(ctx context.Context, counter models.CounterDelta, inventory []models.InventoryDelta) error {
	c := counter
	t.pendingCounter = &c
	t.pendingInventory = append(t.pendingInventory, inventory...)
	return nil
}

func (t *txn) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCommits > 0 {
		s.failCommits--
		return repositories.ErrTxnConflict
	}

	// Validate every guard before mutating anything.
	if t.pendingCounter != nil {
		if s.counters.TotalSpins != t.pendingCounter.ExpectedTotalSpins {
			return repositories.ErrTxnConflict
		}
		if t.pendingCounter.ContestantIncrement > 0 {
			start := t.pendingCounter.ContestantRangeStart
			if s.counters.RangeContestantCounts[start]+t.pendingCounter.ContestantIncrement > s.quotas[start] {
				return repositories.ErrTxnConflict
			}
		}
	}
	for _, d := range t.pendingInventory {
		rec, ok := s.inventory[prizeKey{d.PrizeName, d.RangeStart}]
		if !ok || rec.Remaining < d.Decrement {
			return repositories.ErrTxnConflict
		}
	}
	if t.pendingTicket != nil {
		existing, ok := s.tickets[t.pendingTicket.Code]
		if !ok || existing.Redeemed {
			return repositories.ErrTxnConflict
		}
	}

	if t.pendingCounter != nil {
		s.counters.TotalSpins += t.pendingCounter.SpinIncrement
		s.counters.GrandPrizeContestants += t.pendingCounter.ContestantIncrement
		if t.pendingCounter.ContestantIncrement > 0 {
			s.counters.RangeContestantCounts[t.pendingCounter.ContestantRangeStart] += t.pendingCounter.ContestantIncrement
		}
	}
	for _, d := range t.pendingInventory {
		key := prizeKey{d.PrizeName, d.RangeStart}
		rec := s.inventory[key]
		rec.Remaining -= d.Decrement
		s.inventory[key] = rec
	}
	if t.pendingTicket != nil {
		existing := s.tickets[t.pendingTicket.Code]
		updated := *t.pendingTicket
		updated.CreatedAt = existing.CreatedAt
		s.tickets[updated.Code] = updated
	}

	if s.unknownCommits > 0 {
		s.unknownCommits--
		return repositories.ErrCommitUnknown
	}
	return nil
}

func (t *txn) Abort(ctx context.Context) error {
	t.done = true
	return nil
}

// --- repositories.TicketRepository ---

func (s *Store) Create(ctx context.Context, ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tickets[ticket.Code]; exists {
		return repositories.ErrDuplicateCode
	}
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	s.tickets[ticket.Code] = *ticket
	return nil
}

func (s *Store) CreateMany(ctx context.Context, tickets []*models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range tickets {
		if _, exists := s.tickets[t.Code]; exists {
			return repositories.ErrDuplicateCode
		}
	}
	now := time.Now()
	for _, t := range tickets {
		t.CreatedAt = now
		t.UpdatedAt = now
		s.tickets[t.Code] = *t
	}
	return nil
}

func (s *Store) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[code]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &ticket, nil
}

func (s *Store) FindExistingCodes(ctx context.Context, codes []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing []string
	for _, code := range codes {
		if _, ok := s.tickets[code]; ok {
			existing = append(existing, code)
		}
	}
	return existing, nil
}

func (s *Store) FindWinning(ctx context.Context) ([]*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var winners []*models.Ticket
	for _, ticket := range s.tickets {
		if ticket.IsGrandPrizeContestant || (ticket.Redeemed && ticket.Outcome != models.OutcomeTryAgain && ticket.Outcome != "") {
			copied := ticket
			winners = append(winners, &copied)
		}
	}
	sort.Slice(winners, func(i, j int) bool {
		if !winners[i].CreatedAt.Equal(winners[j].CreatedAt) {
			return winners[i].CreatedAt.After(winners[j].CreatedAt)
		}
		return winners[i].Code < winners[j].Code
	})
	return winners, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.tickets)), nil
}
