package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/artifactng/wheelspin-backend/internal/models"
	"github.com/artifactng/wheelspin-backend/internal/repositories"
)

// TicketRepository implements the repositories.TicketRepository interface
type TicketRepository struct {
	collection *mongo.Collection
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *mongo.Database) repositories.TicketRepository {
	return &TicketRepository{
		collection: db.Collection("tickets"),
	}
}

// EnsureIndexes creates the unique index on the ticket code.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("tickets").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"code": 1},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create creates a new ticket
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, ticket)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrDuplicateCode
	}
	return err
}

// CreateMany creates a batch of tickets
func (r *TicketRepository) CreateMany(ctx context.Context, tickets []*models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(tickets))
	now := time.Now()
	for _, t := range tickets {
		t.CreatedAt = now
		t.UpdatedAt = now
		docs = append(docs, t)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrDuplicateCode
	}
	return err
}

// FindByCode finds a ticket by its code
func (r *TicketRepository) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// FindExistingCodes returns which of the given codes are already registered
func (r *TicketRepository) FindExistingCodes(ctx context.Context, codes []string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"code": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"code": bson.M{"$in": codes}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var existing []string
	for cursor.Next(ctx) {
		var doc struct {
			Code string `bson:"code"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		existing = append(existing, doc.Code)
	}
	return existing, cursor.Err()
}

// FindWinning finds redeemed tickets with a winning outcome or a grand-prize
// contestant flag, newest first
func (r *TicketRepository) FindWinning(ctx context.Context) ([]*models.Ticket, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"redeemed": true, "outcome": bson.M{"$nin": bson.A{models.OutcomeTryAgain, ""}}},
		bson.M{"isGrandPrizeContestant": true},
	}}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []*models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// Count counts all tickets
func (r *TicketRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
