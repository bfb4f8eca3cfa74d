// Package core implements the ledger derivation engine: the domain records,
// balance computation, document numbering, transaction normalization and the
// filter/report engine. Everything in this package is a pure function of its
// inputs; nothing here mutates a collection it is given.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in minor units (cents). Riyal amounts are typically
// whole, but purchase line items may produce fractional totals.
type Money struct {
	Cents int64
}

// ParseDecimal converts a decimal string to cents with half-up rounding on
// the third decimal place. Both dot and comma separators are accepted. A
// leading minus sign is accepted because derived figures can be negative;
// entry validation rejects negatives separately.
func ParseDecimal(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}

	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if negative {
		cents = -cents
	}
	return cents, nil
}

// Decimal formats the amount as a plain decimal string: whole amounts carry
// no fraction ("120000"), fractional ones two digits ("12.50"). This is the
// form used for amount substring search and CSV export.
func (m Money) Decimal() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	if cents%100 == 0 {
		return sign + strconv.FormatInt(cents/100, 10)
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." +
		pad2(cents%100)
}

// Neg returns the arithmetic negation.
func (m Money) Neg() Money { return Money{Cents: -m.Cents} }

// MarshalJSON renders the amount as a JSON number in major units, matching
// the persisted and exported data shape.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string. Restored documents
// may carry amounts in either form.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		m.Cents = 0
		return nil
	}
	cents, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
