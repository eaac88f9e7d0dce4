// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
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

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("memberships")}
}

func (s *Store) Create(ctx context.Context, m models.Membership) (models.Membership, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	if m.Status == "" {
		m.Status = models.MembershipPending
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Membership{}, err
	}
	return m, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		return models.Membership{}, err
	}
	return m, nil
}

// FindLive returns the user's non-inactive membership, or nil when the
// user has none. The billing service uses this to enforce the
// one-live-membership-per-user invariant before creating a new one.
func (s *Store) FindLive(ctx context.Context, tenantID, userID primitive.ObjectID) (*models.Membership, error) {
	filter := bson.M{
		"tenant_id": tenantID,
		"user_id":   userID,
		"status":    bson.M{"$ne": models.MembershipInactive},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var m models.Membership
	err := s.c.FindOne(ctx, filter, opts).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListActiveByTenant returns the memberships the monthly invoice job
// bills: status active only.
func (s *Store) ListActiveByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]models.Membership, error) {
	return s.list(ctx, bson.M{"tenant_id": tenantID, "status": models.MembershipActive})
}

// ListBillableByTenant returns memberships eligible for overdue
// checking: everything except inactive and already-suspended ones.
func (s *Store) ListBillableByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]models.Membership, error) {
	return s.list(ctx, bson.M{
		"tenant_id": tenantID,
		"status":    bson.M{"$nin": bson.A{models.MembershipInactive, models.MembershipSuspended}},
	})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Membership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var ms []models.Membership
	if err := cur.All(ctx, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// Activate marks the membership active. Reactivation counts as a fresh
// activation: suspension and cancellation markers are cleared.
func (s *Store) Activate(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"status":     models.MembershipActive,
			"updated_at": time.Now().UTC(),
		},
		"$unset": bson.M{
			"suspended_at": "",
			"canceled_at":  "",
			"end_date":     "",
		},
	}
	return s.updateOne(ctx, bson.M{"_id": id}, update)
}

// Suspend marks the membership suspended with the given timestamp.
func (s *Store) Suspend(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"status":       models.MembershipSuspended,
		"suspended_at": at,
		"updated_at":   time.Now().UTC(),
	}}
	return s.updateOne(ctx, bson.M{"_id": id}, update)
}

// CancelImmediate ends the membership now.
func (s *Store) CancelImmediate(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"status":      models.MembershipInactive,
		"canceled_at": at,
		"end_date":    at,
		"updated_at":  time.Now().UTC(),
	}}
	return s.updateOne(ctx, bson.M{"_id": id}, update)
}

// CancelScheduled keeps the membership live until the period end.
func (s *Store) CancelScheduled(ctx context.Context, id primitive.ObjectID, at, endDate time.Time) error {
	update := bson.M{"$set": bson.M{
		"status":      models.MembershipCanceledScheduled,
		"canceled_at": at,
		"end_date":    endDate,
		"updated_at":  time.Now().UTC(),
	}}
	return s.updateOne(ctx, bson.M{"_id": id}, update)
}

// SetNextDueDate advances the billing anchor.
func (s *Store) SetNextDueDate(ctx context.Context, id primitive.ObjectID, next time.Time) error {
	update := bson.M{"$set": bson.M{
		"next_due_date": next,
		"updated_at":    time.Now().UTC(),
	}}
	return s.updateOne(ctx, bson.M{"_id": id}, update)
}

func (s *Store) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
