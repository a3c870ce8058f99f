package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// monthPattern matches the YYYY-MM month label carried by every expense.
var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidMonth reports whether s is a YYYY-MM month label.
func ValidMonth(s string) bool {
	return monthPattern.MatchString(s)
}

// ValidAmount reports whether d is a strictly positive amount.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive()
}

// NormalizeCurrency uppercases a currency code, falling back to the default
// when the input is blank.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency
	}
	return code
}

// ParseAmount parses a caller-supplied amount string and requires it to be
// strictly positive.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than zero, got %s", d)
	}
	return d, nil
}
