// internal/app/store/tenants/tenantstore.go
package tenantstore

import (
	"context"
	"errors"
	"time"

	"github.com/playdesk/clubledger/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateTenant = errors.New("a tenant with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tenants")}
}

func (s *Store) Create(ctx context.Context, tenant models.Tenant) (models.Tenant, error) {
	now := time.Now().UTC()
	tenant.ID = primitive.NewObjectID()
	if tenant.Status == "" {
		tenant.Status = "active"
	}
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, tenant)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Tenant{}, ErrDuplicateTenant
		}
		return models.Tenant{}, err
	}
	return tenant, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Tenant, error) {
	var tenant models.Tenant
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&tenant)
	if err != nil {
		return models.Tenant{}, err
	}
	return tenant, nil
}

// ListActive returns every active tenant. Batch jobs fan out over this
// list sequentially; ordering by _id keeps runs deterministic.
func (s *Store) ListActive(ctx context.Context) ([]models.Tenant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"status": "active"}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var tenants []models.Tenant
	if err := cur.All(ctx, &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}
