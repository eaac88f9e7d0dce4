// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"time"

	"github.com/playdesk/clubledger/internal/app/system/normalize"
	"github.com/playdesk/clubledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) Create(ctx context.Context, user models.User) (models.User, error) {
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.FullName = normalize.Name(user.FullName)
	user.Email = normalize.Email(user.Email)
	user.Phone = normalize.Phone(user.Phone)
	if user.Status == "" {
		user.Status = "active"
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) GetByID(ctx context.Context, tenantID, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id, "tenant_id": tenantID}).Decode(&user)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
