package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxScoreDigits matches the NUMERIC(38, 0) score and amount columns
const maxScoreDigits = 38

// wholeAmount returns v as a plain integer when it is one of at most
// maxScoreDigits digits. The size is read from the coefficient and exponent
// before anything rescales the value, so "1e99999999" is rejected without
// being expanded.
func wholeAmount(v decimal.Decimal) (decimal.Decimal, bool) {
	if v.IsZero() {
		return decimal.Zero, true
	}
	exp := int64(v.Exponent())
	if exp < -maxScoreDigits || int64(v.NumDigits())+exp > maxScoreDigits {
		return decimal.Zero, false
	}
	if !v.IsInteger() {
		return decimal.Zero, false
	}
	return decimal.NewFromBigInt(v.BigInt(), 0), true
}

// ParseThreshold parses a minimum score given on a query string or flag
func ParseThreshold(s string) (decimal.Decimal, error) {
	value, err := parseScoreValue(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: min score: %v", ErrInvalidInput, err)
	}
	return value, nil
}

func parseScoreValue(s string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative value %s", s)
	}
	whole, ok := wholeAmount(value)
	if !ok {
		return decimal.Zero, fmt.Errorf("value %q is not a whole number of at most %d digits", strings.TrimSpace(s), maxScoreDigits)
	}
	return whole, nil
}
