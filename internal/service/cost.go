package service

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidRent is returned by ParseRent for empty, malformed or negative input.
var ErrInvalidRent = errors.New("invalid rent cost")

// PerPerson splits rent between the roster and the organizer, rounded half
// away from zero to two decimals.  The same rule is used for the stored
// valorUnitario and for every response, so the two never disagree.
func PerPerson(rent decimal.Decimal, rosterSize int) decimal.Decimal {
	players := rosterSize + 1
	if players <= 0 {
		return decimal.Zero
	}
	return rent.Div(decimal.NewFromInt(int64(players))).Round(2)
}

// PerPersonFromString is PerPerson for raw form input; rent that does not
// parse yields zero.
func PerPersonFromString(rent string, rosterSize int) decimal.Decimal {
	r, err := ParseRent(rent)
	if err != nil {
		return decimal.Zero
	}
	return PerPerson(r, rosterSize)
}

// ParseRent reads a rent amount typed as "90", "90.00", "90,00" or
// "1.250,00".
func ParseRent(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidRent
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidRent
	}
	return d, nil
}

// FormatMoney renders an amount with exactly two decimals.
func FormatMoney(d decimal.Decimal) string { return d.StringFixed(2) }
