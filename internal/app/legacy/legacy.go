// Package legacy models the old debit/credit ledger the migrator reads.
//
// The legacy schema was loosely typed: category and status were free
// strings and there was no type column at all. This package pins those
// down with explicit finite mapping tables and a named fallback, so an
// unmapped source value is visible in the output instead of silently
// probed around.
package legacy

import (
	"context"
	"time"

	"github.com/playdesk/clubledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record is one row of the legacy ledger.
type Record struct {
	LegacyID    string
	TenantID    primitive.ObjectID
	UserID      *primitive.ObjectID
	Category    string
	Status      string
	AmountCents int64
	Description string
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

// Source iterates a legacy ledger. The Postgres implementation is the
// production one; tests substitute an in-memory source.
type Source interface {
	// Records returns every legacy row, oldest first.
	Records(ctx context.Context) ([]Record, error)
	// Count returns the number of source rows, for post-run validation.
	Count(ctx context.Context) (int64, error)
	// Name identifies the source in migration reports.
	Name() string
}

// categoryMap translates legacy category strings. Anything not listed
// falls back to CategoryOther so unmapped values stay countable.
var categoryMap = map[string]string{
	"mensalidade":   models.CategoryMembership,
	"taxa_jogo":     models.CategoryGameFee,
	"aluguel_campo": models.CategoryFieldRental,
	"arbitragem":    models.CategoryReferee,
	"equipamento":   models.CategoryEquipment,
}

// statusMap translates the legacy status vocabulary.
var statusMap = map[string]string{
	"pendente":   models.TransactionPending,
	"confirmado": models.TransactionCompleted,
	"estornado":  models.TransactionCancelled,
}

// expenseCategories lists the mapped categories treated as money going
// out. The legacy schema had no type column, so type is inferred here:
// field-rental-like categories are expenses, everything else income.
var expenseCategories = map[string]bool{
	models.CategoryFieldRental: true,
}

// MapCategory resolves a legacy category, reporting whether it was a
// known value or the fallback.
func MapCategory(legacyCategory string) (category string, known bool) {
	if c, ok := categoryMap[legacyCategory]; ok {
		return c, true
	}
	return models.CategoryOther, false
}

// MapStatus resolves a legacy status. Unknown statuses map to pending,
// the safest state: a pending transaction can still advance, while a
// wrongly completed one would be immutable history.
func MapStatus(legacyStatus string) (status string, known bool) {
	if s, ok := statusMap[legacyStatus]; ok {
		return s, true
	}
	return models.TransactionPending, false
}

// MapRecord converts a legacy row into a Transaction carrying the
// legacy id as its idempotency key.
//
// Dates follow the source semantics: a confirmed record was paid when
// it was confirmed, so dueDate and paidAt both take confirmedAt; any
// other record falls due at its legacy creation time and has no paidAt.
func MapRecord(rec Record) models.Transaction {
	category, _ := MapCategory(rec.Category)
	status, _ := MapStatus(rec.Status)

	txType := models.TransactionIncome
	if expenseCategories[category] {
		txType = models.TransactionExpense
	}

	tx := models.Transaction{
		TenantID:    rec.TenantID,
		UserID:      rec.UserID,
		Type:        txType,
		Category:    category,
		Status:      status,
		AmountCents: rec.AmountCents,
		DueDate:     rec.CreatedAt,
		Description: rec.Description,
		LegacyID:    rec.LegacyID,
	}

	if status == models.TransactionCompleted && rec.ConfirmedAt != nil {
		tx.DueDate = *rec.ConfirmedAt
		tx.PaidAt = rec.ConfirmedAt
	}
	return tx
}
