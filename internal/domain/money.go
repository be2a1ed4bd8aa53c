package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amounts are stored as numeric(14, 2).
const (
	amountScale         = 2
	amountIntegerDigits = 12
)

// MaxAmount is the exclusive upper bound of a storable amount.
var MaxAmount = decimal.New(1, amountIntegerDigits)

// ParsePositiveAmount parses a decimal amount supplied as text. Quoted JSON
// strings are accepted so that form values and numbers decode the same way.
// Values must fit the stored precision: whole cents, below MaxAmount.
func ParsePositiveAmount(field, raw string) (decimal.Decimal, error) {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	if raw == "" || raw == "null" {
		return decimal.Zero, fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be numeric", ErrValidation, field)
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be greater than zero", ErrValidation, field)
	}
	if !v.Equal(v.Truncate(amountScale)) {
		return decimal.Zero, fmt.Errorf("%w: %s must have at most %d decimal places", ErrValidation, field, amountScale)
	}
	if v.GreaterThanOrEqual(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %s must be less than %s", ErrValidation, field, MaxAmount)
	}
	return v, nil
}

// ToMinorUnits converts a major-unit amount to cents, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
