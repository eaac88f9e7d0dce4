// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureTenants(ctx, db); err != nil {
		problems = append(problems, "tenants: "+err.Error())
	}
	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureMemberships(ctx, db); err != nil {
		problems = append(problems, "memberships: "+err.Error())
	}
	if err := ensureTransactions(ctx, db); err != nil {
		problems = append(problems, "transactions: "+err.Error())
	}
	if err := ensureUserBalances(ctx, db); err != nil {
		problems = append(problems, "user_balances: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureTenants(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db.Collection("tenants"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("uniq_name").SetUnique(true),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetName("tenant_email"),
		},
	})
}

func ensureMemberships(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db.Collection("memberships"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("tenant_user_status"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("tenant_status"),
		},
	})
}

func ensureTransactions(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db.Collection("transactions"), []mongo.IndexModel{
		// Open-invoice lookup and per-membership history.
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "membership_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("tenant_membership_status"),
		},
		// Month-window idempotency check for the invoice job.
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "membership_id", Value: 1}, {Key: "category", Value: 1}, {Key: "due_date", Value: 1}},
			Options: options.Index().SetName("tenant_membership_due"),
		},
		// Migration idempotency key. Sparse: only migrated records carry
		// a legacy id, and two imports of the same source row must collide.
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "legacy_id", Value: 1}},
			Options: options.Index().SetName("uniq_tenant_legacy").SetUnique(true).SetSparse(true),
		},
		// Balance recomputation scan.
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("tenant_user_status"),
		},
	})
}

func ensureUserBalances(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db.Collection("user_balances"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_tenant_user").SetUnique(true),
		},
	})
}

func createIndexes(ctx context.Context, coll *mongo.Collection, indexModels []mongo.IndexModel) error {
	for _, m := range indexModels {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			// Same keys already present under a different name or with
			// different options. Surface it but keep going so one stale
			// index never blocks startup of the rest.
			if strings.Contains(err.Error(), "IndexOptionsConflict") ||
				strings.Contains(err.Error(), "IndexKeySpecsConflict") {
				zap.L().Warn("index conflict, keeping existing",
					zap.String("collection", coll.Name()),
					zap.String("name", name),
					zap.Error(err))
				continue
			}
			return err
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name))
	}
	return nil
}
