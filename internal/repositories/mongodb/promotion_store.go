package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/artifactng/wheelspin-backend/internal/models"
	"github.com/artifactng/wheelspin-backend/internal/repositories"
)

// countersDocID is the _id of the singleton counters document.
const countersDocID = "promotion"

// countersDoc is the persisted shape of the scalar counters. The per-range
// contestant counts live in their own keyed collection so each key can be
// incremented atomically.
type countersDoc struct {
	ID                    string `bson:"_id"`
	TotalSpins            int    `bson:"totalSpins"`
	GrandPrizeContestants int    `bson:"grandPrizeContestants"`
}

// contestantCountDoc is one row of the per-range contestant count table.
type contestantCountDoc struct {
	RangeStart int `bson:"rangeStart"`
	RangeEnd   int `bson:"rangeEnd"`
	Quota      int `bson:"quota"`
	Count      int `bson:"count"`
}

// PromotionStore implements repositories.PromotionStore on MongoDB
// multi-document transactions.
type PromotionStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewPromotionStore creates a new PromotionStore
func NewPromotionStore(client *mongo.Client, db *mongo.Database) *PromotionStore {
	return &PromotionStore{client: client, db: db}
}

// Begin opens a session and starts a transaction with snapshot reads and
// majority writes, the isolation the redemption flow relies on.
func (s *PromotionStore) Begin(ctx context.Context) (repositories.Txn, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if err := sess.StartTransaction(txnOpts); err != nil {
		sess.EndSession(ctx)
		return nil, fmt.Errorf("start transaction: %w", err)
	}

	return &txn{sess: sess, db: s.db}, nil
}

type txn struct {
	sess mongo.Session
	db   *mongo.Database
	done bool
}

func (t *txn) sessionCtx(ctx context.Context) mongo.SessionContext {
	return mongo.NewSessionContext(ctx, t.sess)
}

func (t *txn) ReadCounters(ctx context.Context) (*models.PromotionCounters, error) {
	sc := t.sessionCtx(ctx)

	var doc countersDoc
	err := t.db.Collection("counters").FindOne(sc, bson.M{"_id": countersDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("promotion counters not seeded: %w", repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("read counters: %w", err)
	}

	cursor, err := t.db.Collection("contestant_counts").Find(sc, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("read contestant counts: %w", err)
	}
	defer cursor.Close(sc)

	counts := make(map[int]int)
	for cursor.Next(sc) {
		var row contestantCountDoc
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode contestant count: %w", err)
		}
		counts[row.RangeStart] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("read contestant counts: %w", err)
	}

	return &models.PromotionCounters{
		TotalSpins:            doc.TotalSpins,
		GrandPrizeContestants: doc.GrandPrizeContestants,
		RangeContestantCounts: counts,
	}, nil
}

func (t *txn) ReadInventory(ctx context.Context, rangeStart int) ([]models.PrizeInventoryRecord, error) {
	sc := t.sessionCtx(ctx)

	cursor, err := t.db.Collection("prizes").Find(sc, bson.M{"rangeStart": rangeStart})
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	defer cursor.Close(sc)

	var records []models.PrizeInventoryRecord
	if err := cursor.All(sc, &records); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	return records, nil
}

func (t *txn) ReadTicket(ctx context.Context, code string) (*models.Ticket, error) {
	sc := t.sessionCtx(ctx)

	var ticket models.Ticket
	err := t.db.Collection("tickets").FindOne(sc, bson.M{"code": code}).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("read ticket: %w", err)
	}
	return &ticket, nil
}

// WriteTicket marks a ticket redeemed. The filter requires redeemed=false so
// a concurrent redemption of the same code cannot both succeed.
func (t *txn) WriteTicket(ctx context.Context, ticket *models.Ticket) error {
	sc := t.sessionCtx(ctx)

	result, err := t.db.Collection("tickets").UpdateOne(sc,
		bson.M{"code": ticket.Code, "redeemed": false},
		bson.M{"$set": bson.M{
			"redeemed":               ticket.Redeemed,
			"outcome":                ticket.Outcome,
			"spinNumber":             ticket.SpinNumber,
			"isGrandPrizeContestant": ticket.IsGrandPrizeContestant,
			"updatedAt":              ticket.UpdatedAt,
		}},
	)
	if err != nil {
		if isTransientConflict(err) {
			return repositories.ErrTxnConflict
		}
		return fmt.Errorf("write ticket: %w", err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrTxnConflict
	}
	return nil
}

// ApplyDeltas applies the engine's intended mutations. The spin counter is
// advanced with a compare-and-set on the value read at decision time, which
// serializes every redemption; the conditional inventory decrement is a
// second guard that keeps remaining from ever going negative.
func (t *txn) ApplyDeltas(ctx context.Context, counter models.CounterDelta, inventory []models.InventoryDelta) error {
	sc := t.sessionCtx(ctx)

	result, err := t.db.Collection("counters").UpdateOne(sc,
		bson.M{"_id": countersDocID, "totalSpins": counter.ExpectedTotalSpins},
		bson.M{"$inc": bson.M{
			"totalSpins":            counter.SpinIncrement,
			"grandPrizeContestants": counter.ContestantIncrement,
		}},
	)
	if err != nil {
		if isTransientConflict(err) {
			return repositories.ErrTxnConflict
		}
		return fmt.Errorf("advance counters: %w", err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrTxnConflict
	}

	if counter.ContestantIncrement > 0 {
		result, err := t.db.Collection("contestant_counts").UpdateOne(sc,
			bson.M{"rangeStart": counter.ContestantRangeStart, "$expr": bson.M{"$lt": bson.A{"$count", "$quota"}}},
			bson.M{"$inc": bson.M{"count": counter.ContestantIncrement}},
		)
		if err != nil {
			if isTransientConflict(err) {
				return repositories.ErrTxnConflict
			}
			return fmt.Errorf("advance contestant count: %w", err)
		}
		if result.MatchedCount == 0 {
			return repositories.ErrTxnConflict
		}
	}

	for _, d := range inventory {
		result, err := t.db.Collection("prizes").UpdateOne(sc,
			bson.M{"name": d.PrizeName, "rangeStart": d.RangeStart, "remaining": bson.M{"$gte": d.Decrement}},
			bson.M{"$inc": bson.M{"remaining": -d.Decrement}},
		)
		if err != nil {
			if isTransientConflict(err) {
				return repositories.ErrTxnConflict
			}
			return fmt.Errorf("decrement prize %q: %w", d.PrizeName, err)
		}
		if result.MatchedCount == 0 {
			return repositories.ErrTxnConflict
		}
	}
	return nil
}

func (t *txn) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	sc := t.sessionCtx(ctx)

	err := t.sess.CommitTransaction(sc)
	t.done = true
	t.sess.EndSession(ctx)
	if err != nil {
		var se mongo.ServerError
		if errors.As(err, &se) && se.HasErrorLabel("UnknownTransactionCommitResult") {
			return repositories.ErrCommitUnknown
		}
		if isTransientConflict(err) {
			return repositories.ErrTxnConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (t *txn) Abort(ctx context.Context) error {
	if t.done {
		return nil
	}
	sc := t.sessionCtx(ctx)

	err := t.sess.AbortTransaction(sc)
	t.done = true
	t.sess.EndSession(ctx)
	if err != nil {
		return fmt.Errorf("abort transaction: %w", err)
	}
	return nil
}

// isTransientConflict reports whether the error is MongoDB telling us the
// transaction lost a write-write race and should be retried from the top.
func isTransientConflict(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		// 112 is WriteConflict.
		return se.HasErrorLabel("TransientTransactionError") || se.HasErrorCode(112)
	}
	return false
}
