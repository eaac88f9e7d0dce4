// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership statuses.
//
// Lifecycle: pending → active → suspended → active (reactivated by full
// payment). A cancel request moves any live membership to
// canceled_scheduled (ends at period end) or straight to inactive.
// Inactive is terminal except that a later full payment resurrects the
// record to active; that is a fresh activation, not a new membership.
const (
	MembershipPending           = "pending"
	MembershipActive            = "active"
	MembershipSuspended         = "suspended"
	MembershipCanceledScheduled = "canceled_scheduled"
	MembershipInactive          = "inactive"
)

// Membership is one recurring obligation per (tenant, user). At most one
// live (non-inactive) membership per pair is the intended steady state;
// the billing service enforces it, not a unique index.
type Membership struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`

	Status         string `bson:"status" json:"status"`
	PlanValueCents int64  `bson:"plan_value_cents" json:"plan_value_cents"`

	StartDate time.Time `bson:"start_date" json:"start_date"`
	// NextDueDate is always day 10 of some month at 12:00 local.
	NextDueDate time.Time  `bson:"next_due_date" json:"next_due_date"`
	EndDate     *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`
	CanceledAt  *time.Time `bson:"canceled_at,omitempty" json:"canceled_at,omitempty"`
	SuspendedAt *time.Time `bson:"suspended_at,omitempty" json:"suspended_at,omitempty"`

	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsValidMembershipStatus checks if a value is a known membership status.
func IsValidMembershipStatus(v string) bool {
	switch v {
	case MembershipPending, MembershipActive, MembershipSuspended,
		MembershipCanceledScheduled, MembershipInactive:
		return true
	}
	return false
}

// IsLive reports whether the membership still represents an obligation.
func (m Membership) IsLive() bool {
	return m.Status != MembershipInactive
}
