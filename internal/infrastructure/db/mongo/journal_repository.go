package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cascadeforum/portal/internal/core/domain"
)

const journalCollection = "checkout_journal"

// JournalRepository implements ports.JournalRepository using MongoDB.
type JournalRepository struct {
	coll *mongo.Collection
}

// NewJournalRepository creates a JournalRepository on the checkout_journal collection.
func NewJournalRepository(db *mongo.Database) *JournalRepository {
	return &JournalRepository{coll: db.Collection(journalCollection)}
}

// EnsureIndexes creates the lookup index used by History.
func (r *JournalRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "registration_id", Value: 1}, {Key: "at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("journal index: %w", err)
	}
	return nil
}

// Append inserts one transition.
func (r *JournalRepository) Append(ctx context.Context, entry *domain.CheckoutJournalEntry) error {
	doc := *entry
	doc.At = entry.At.UTC()
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

// History returns the transitions recorded for a registration, oldest first.
func (r *JournalRepository) History(ctx context.Context, registrationID string, limit int64) ([]domain.CheckoutJournalEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.coll.Find(ctx, bson.M{"registration_id": registrationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("journal find: %w", err)
	}
	defer cur.Close(ctx)

	entries := make([]domain.CheckoutJournalEntry, 0)
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("journal decode: %w", err)
	}
	return entries, nil
}
