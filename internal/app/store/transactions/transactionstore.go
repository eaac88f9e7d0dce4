// internal/app/store/transactions/transactionstore.go
package transactionstore

import (
	"context"
	"errors"
	"time"

	"github.com/playdesk/clubledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrMissingTenant = errors.New("transaction is missing a tenant id")
	ErrInvalidAmount = errors.New("transaction amount must be positive")
	// ErrNotPending is returned when a status transition expected the
	// transaction to still be open (completing or overduing it) but it
	// was already advanced, typically by a concurrent job run.
	ErrNotPending = errors.New("transaction is not pending")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("transactions")}
}

func (s *Store) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.TenantID.IsZero() {
		return models.Transaction{}, ErrMissingTenant
	}
	if tx.AmountCents <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	now := time.Now().UTC()
	tx.ID = primitive.NewObjectID()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, tx); err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Transaction, error) {
	var tx models.Transaction
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&tx)
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

// FindOpenInvoice returns the most recent pending transaction linked to
// the membership ("open invoice"), or nil when none exists.
func (s *Store) FindOpenInvoice(ctx context.Context, tenantID, membershipID primitive.ObjectID) (*models.Transaction, error) {
	filter := bson.M{
		"tenant_id":     tenantID,
		"membership_id": membershipID,
		"status":        models.TransactionPending,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var tx models.Transaction
	err := s.c.FindOne(ctx, filter, opts).Decode(&tx)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListByMembership returns every transaction linked to the membership,
// newest first.
func (s *Store) ListByMembership(ctx context.Context, tenantID, membershipID primitive.ObjectID) ([]models.Transaction, error) {
	filter := bson.M{"tenant_id": tenantID, "membership_id": membershipID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var txs []models.Transaction
	if err := cur.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// HasMembershipChargeInMonth reports whether a membership-category income
// transaction already exists with a due date inside ref's calendar month.
// This is the monthly invoice job's idempotency window: pending,
// completed, and overdue charges all count (only cancelled ones do not),
// so a re-run in the same month never bills twice.
func (s *Store) HasMembershipChargeInMonth(ctx context.Context, tenantID, membershipID primitive.ObjectID, ref time.Time) (bool, error) {
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	filter := bson.M{
		"tenant_id":     tenantID,
		"membership_id": membershipID,
		"category":      models.CategoryMembership,
		"type":          models.TransactionIncome,
		"status":        bson.M{"$ne": models.TransactionCancelled},
		"due_date":      bson.M{"$gte": monthStart, "$lt": nextMonth},
	}
	count, err := s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByLegacyID reports whether a transaction already references the
// given legacy ledger record. Re-run safety for the migration.
func (s *Store) ExistsByLegacyID(ctx context.Context, tenantID primitive.ObjectID, legacyID string) (bool, error) {
	filter := bson.M{"tenant_id": tenantID, "legacy_id": legacyID}
	count, err := s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountMigrated counts the tenant's transactions that carry a legacy id,
// for source-vs-destination validation after a migration run.
func (s *Store) CountMigrated(ctx context.Context, tenantID primitive.ObjectID) (int64, error) {
	filter := bson.M{"tenant_id": tenantID, "legacy_id": bson.M{"$exists": true, "$ne": ""}}
	return s.c.CountDocuments(ctx, filter)
}

// ListPendingMembershipCharges returns the tenant's open membership
// charges, the candidates for overdue detection.
func (s *Store) ListPendingMembershipCharges(ctx context.Context, tenantID primitive.ObjectID) ([]models.Transaction, error) {
	filter := bson.M{
		"tenant_id": tenantID,
		"category":  models.CategoryMembership,
		"type":      models.TransactionIncome,
		"status":    models.TransactionPending,
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var txs []models.Transaction
	if err := cur.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Complete marks a pending transaction paid. The pending filter makes
// the transition race-tolerant: a concurrent completion leaves nothing
// to match and surfaces as ErrNotPending instead of double-applying.
func (s *Store) Complete(ctx context.Context, id primitive.ObjectID, paidAt time.Time, method string) error {
	filter := bson.M{"_id": id, "status": models.TransactionPending}
	update := bson.M{"$set": bson.M{
		"status":     models.TransactionCompleted,
		"paid_at":    paidAt,
		"method":     method,
		"updated_at": time.Now().UTC(),
	}}
	return s.transition(ctx, filter, update)
}

// MarkOverdue advances a pending transaction to overdue.
func (s *Store) MarkOverdue(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "status": models.TransactionPending}
	update := bson.M{"$set": bson.M{
		"status":     models.TransactionOverdue,
		"updated_at": time.Now().UTC(),
	}}
	return s.transition(ctx, filter, update)
}

// ReduceAmount shrinks a pending transaction's amount by exactly
// byCents. The filter floors the result at zero: a reduction larger than
// the remaining amount matches nothing and returns ErrNotPending.
func (s *Store) ReduceAmount(ctx context.Context, id primitive.ObjectID, byCents int64) error {
	if byCents <= 0 {
		return ErrInvalidAmount
	}
	filter := bson.M{
		"_id":          id,
		"status":       models.TransactionPending,
		"amount_cents": bson.M{"$gte": byCents},
	}
	update := bson.M{
		"$inc": bson.M{"amount_cents": -byCents},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	return s.transition(ctx, filter, update)
}

// SetExternalID stores the accounting mirror's id for traceability.
func (s *Store) SetExternalID(ctx context.Context, id primitive.ObjectID, externalID string) error {
	update := bson.M{"$set": bson.M{
		"external_id": externalID,
		"updated_at":  time.Now().UTC(),
	}}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (s *Store) transition(ctx context.Context, filter, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotPending
	}
	return nil
}
