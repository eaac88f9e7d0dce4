// internal/domain/models/transaction.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction categories.
const (
	CategoryMembership  = "membership"
	CategoryGameFee     = "game_fee"
	CategoryFieldRental = "field_rental"
	CategoryReferee     = "referee"
	CategoryEquipment   = "equipment"
	CategoryOther       = "other"
)

// Transaction statuses. Once completed, amount and paid_at are immutable
// history. While pending, amount may only shrink (partial payments) and
// status may advance.
const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionCancelled = "cancelled"
	TransactionOverdue   = "overdue"
)

// Transaction is a financial fact: a membership charge, game fee, field
// rental, adjustment, or any other money movement inside a tenant.
type Transaction struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`

	UserID       *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	GameID       *primitive.ObjectID `bson:"game_id,omitempty" json:"game_id,omitempty"`
	MembershipID *primitive.ObjectID `bson:"membership_id,omitempty" json:"membership_id,omitempty"`

	Type     string `bson:"type" json:"type"`
	Category string `bson:"category" json:"category"`
	Status   string `bson:"status" json:"status"`

	AmountCents int64      `bson:"amount_cents" json:"amount_cents"`
	DueDate     time.Time  `bson:"due_date" json:"due_date"`
	PaidAt      *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`

	Description string `bson:"description" json:"description"`
	Method      string `bson:"method,omitempty" json:"method,omitempty"`

	// ExternalID traces the mirrored record in the external accounting
	// system, when one is configured.
	ExternalID string `bson:"external_id,omitempty" json:"external_id,omitempty"`
	// LegacyID is the migration idempotency key: a transaction imported
	// from the old debit/credit ledger carries its source record id.
	LegacyID string `bson:"legacy_id,omitempty" json:"legacy_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AllTransactionCategories lists every known category. Used for
// validation and as the reference set for mapping tables.
var AllTransactionCategories = []string{
	CategoryMembership,
	CategoryGameFee,
	CategoryFieldRental,
	CategoryReferee,
	CategoryEquipment,
	CategoryOther,
}

// IsValidTransactionCategory checks if a value is a known category.
func IsValidTransactionCategory(v string) bool {
	for _, c := range AllTransactionCategories {
		if c == v {
			return true
		}
	}
	return false
}

// IsValidTransactionStatus checks if a value is a known status.
func IsValidTransactionStatus(v string) bool {
	switch v {
	case TransactionPending, TransactionCompleted, TransactionCancelled, TransactionOverdue:
		return true
	}
	return false
}

// IsOpen reports whether the transaction is still payable.
func (t Transaction) IsOpen() bool {
	return t.Status == TransactionPending
}
