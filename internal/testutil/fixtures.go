package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/playdesk/clubledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateTenant creates an active test tenant with the given name.
func (f *Fixtures) CreateTenant(ctx context.Context, name string) models.Tenant {
	f.t.Helper()

	now := time.Now().UTC()
	tenant := models.Tenant{
		ID:        primitive.NewObjectID(),
		Name:      name,
		TimeZone:  "America/Sao_Paulo",
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("tenants").InsertOne(ctx, tenant); err != nil {
		f.t.Fatalf("failed to create test tenant: %v", err)
	}
	return tenant
}

// CreateUser creates a test user inside the tenant.
func (f *Fixtures) CreateUser(ctx context.Context, tenantID primitive.ObjectID, fullName string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		TenantID:  tenantID,
		FullName:  fullName,
		Email:     "player@example.com",
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateMembership creates a membership in the given status.
func (f *Fixtures) CreateMembership(ctx context.Context, tenantID, userID primitive.ObjectID, status string, planValueCents int64, nextDueDate time.Time) models.Membership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Membership{
		ID:             primitive.NewObjectID(),
		TenantID:       tenantID,
		UserID:         userID,
		Status:         status,
		PlanValueCents: planValueCents,
		StartDate:      now,
		NextDueDate:    nextDueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateTransaction inserts a transaction, filling in defaults for any
// zero-valued field the billing engine always sets.
func (f *Fixtures) CreateTransaction(ctx context.Context, tx models.Transaction) models.Transaction {
	f.t.Helper()

	now := time.Now().UTC()
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	if tx.Type == "" {
		tx.Type = models.TransactionIncome
	}
	if tx.Category == "" {
		tx.Category = models.CategoryMembership
	}
	if tx.Status == "" {
		tx.Status = models.TransactionPending
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	if tx.UpdatedAt.IsZero() {
		tx.UpdatedAt = now
	}
	if _, err := f.db.Collection("transactions").InsertOne(ctx, tx); err != nil {
		f.t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
