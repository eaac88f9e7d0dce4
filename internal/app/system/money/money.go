// Package money converts boundary amounts into integer minor units.
//
// All internal arithmetic in the billing engine runs on int64 cents;
// decimal values exist only at the edge, where operator input arrives in
// whole currency units.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrFractionalCents = errors.New("amount has sub-cent precision")

// ToCents converts a whole-unit decimal amount (e.g. "14.00") into
// cents. Amounts finer than one cent are rejected rather than rounded,
// so no caller can introduce rounding drift.
func ToCents(amount decimal.Decimal) (int64, error) {
	cents := amount.Shift(2)
	if !cents.IsInteger() {
		return 0, ErrFractionalCents
	}
	return cents.IntPart(), nil
}

// FromCents renders cents back into a whole-unit decimal, for report
// output and event payloads.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}
