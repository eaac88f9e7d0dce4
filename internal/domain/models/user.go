// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a party who owes or receives money within a tenant.
//
// NOTE:
//   - Balance is never stored on the user document. The cached projection
//     lives in the user_balances collection and is always re-derivable
//     from transactions.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`
	FullName string             `bson:"full_name" json:"full_name"`
	Email    string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Status   string             `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// UserBalance is the cached per-(tenant,user) balance projection.
// It is recomputed whole from transactions on every mutation and
// upserted last-write-wins; concurrent recomputes converge.
type UserBalance struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID     primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	BalanceCents int64              `bson:"balance_cents" json:"balance_cents"`
	ComputedAt   time.Time          `bson:"computed_at" json:"computed_at"`
}
