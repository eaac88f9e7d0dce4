// Package events defines the billing engine's domain-event surface.
//
// Events are published after local state is durable and are strictly
// best-effort: a failed publish is logged by the caller and never rolls
// back or blocks the billing path.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Publisher emits a domain event to whatever bus is configured.
type Publisher interface {
	Publish(ctx context.Context, event any) error
	Close() error
}

// PaymentRecorded is emitted when a manual payment completes a
// transaction (fully or as a partial split).
type PaymentRecorded struct {
	EventID       string          `json:"event_id"`
	TenantID      string          `json:"tenant_id"`
	MembershipID  string          `json:"membership_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Partial       bool            `json:"partial"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// MembershipSuspended is emitted when the overdue job suspends a
// membership over an unpaid charge.
type MembershipSuspended struct {
	EventID       string    `json:"event_id"`
	TenantID      string    `json:"tenant_id"`
	MembershipID  string    `json:"membership_id"`
	TransactionID string    `json:"transaction_id"`
	DueDate       time.Time `json:"due_date"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Nop discards events. Used when no broker is configured and in tests.
type Nop struct{}

func (Nop) Publish(ctx context.Context, event any) error { return nil }
func (Nop) Close() error                                 { return nil }

var _ Publisher = Nop{}
