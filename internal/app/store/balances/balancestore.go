// internal/app/store/balances/balancestore.go
package balancestore

import (
	"context"
	"time"

	"github.com/playdesk/clubledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store caches the derived balance projection. Writes are whole-value
// upserts; last-write-wins is safe because every writer computes the
// value from the same source transactions.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_balances")}
}

func (s *Store) Upsert(ctx context.Context, tenantID, userID primitive.ObjectID, balanceCents int64, computedAt time.Time) error {
	filter := bson.M{"tenant_id": tenantID, "user_id": userID}
	update := bson.M{"$set": bson.M{
		"tenant_id":     tenantID,
		"user_id":       userID,
		"balance_cents": balanceCents,
		"computed_at":   computedAt,
	}}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (s *Store) Get(ctx context.Context, tenantID, userID primitive.ObjectID) (models.UserBalance, error) {
	var b models.UserBalance
	err := s.c.FindOne(ctx, bson.M{"tenant_id": tenantID, "user_id": userID}).Decode(&b)
	if err != nil {
		return models.UserBalance{}, err
	}
	return b, nil
}
