// Package balancequeries derives per-user balances from transactions.
//
// The balance is never authoritative anywhere else: it is always the
// signed sum of completed amounts, recomputed fresh from this pipeline,
// and the user_balances collection only caches the result.
package balancequeries

import (
	"context"

	"github.com/playdesk/clubledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ConfirmedBalance returns the signed sum of the user's completed
// transaction amounts in cents: income positive, expense negative.
func ConfirmedBalance(
	ctx context.Context,
	db *mongo.Database,
	tenantID, userID primitive.ObjectID,
) (int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{
			"tenant_id": tenantID,
			"user_id":   userID,
			"status":    models.TransactionCompleted,
		}},
		{"$group": bson.M{
			"_id": nil,
			"total": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$type", models.TransactionIncome}},
				"$amount_cents",
				bson.M{"$multiply": bson.A{"$amount_cents", -1}},
			}}},
		}},
	}

	cur, err := db.Collection("transactions").Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var row struct {
			Total int64 `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
		return row.Total, nil
	}
	return 0, cur.Err()
}
