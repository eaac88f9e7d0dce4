package indexes_test

import (
	"testing"

	"github.com/playdesk/clubledger/internal/app/system/indexes"
	"github.com/playdesk/clubledger/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Startup runs this on every boot, so it has to be idempotent.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAllCreatesTransactionIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	cur, err := db.Collection("transactions").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("listing indexes: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("decoding index: %v", err)
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	if err := cur.Err(); err != nil {
		t.Fatalf("cursor: %v", err)
	}

	for _, want := range []string{"tenant_membership_status", "tenant_membership_due", "uniq_tenant_legacy", "tenant_user_status"} {
		if !names[want] {
			t.Errorf("missing transactions index %q (have %v)", want, names)
		}
	}
}
