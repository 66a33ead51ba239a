package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/speaky/gateway/internal/core/domain"
)

const collectionLedger = "wallet_transactions"

// LedgerRepository implements ports.LedgerRepository using MongoDB.
type LedgerRepository struct {
	col *mongo.Collection
}

func NewLedgerRepository(database *mongo.Database) *LedgerRepository {
	return &LedgerRepository{col: database.Collection(collectionLedger)}
}

// Append inserts one wallet history entry.
func (r *LedgerRepository) Append(ctx context.Context, entry domain.LedgerEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	entry.CreatedAt = entry.CreatedAt.UTC()
	if _, err := r.col.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// List returns the newest limit entries of a user.
func (r *LedgerRepository) List(ctx context.Context, userID int64, limit int) ([]domain.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find ledger entries: %w", err)
	}
	defer cur.Close(ctx)

	entries := []domain.LedgerEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode ledger entries: %w", err)
	}
	return entries, nil
}

func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
