package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Match is a scheduled pickup match: a venue, a date and time, a rent cost
// and the roster of invited players.  Date and Time hold the canonical
// "DD/MM/YYYY" and "HH:MM" strings; they are parsed into a time.Time by the
// service layer whenever ordering or comparison matters.
//
// The organizer counts as a player but is not part of Roster, so the number
// of people sharing the rent is len(Roster)+1.
type Match struct {
	ID             int64
	Name           string
	Date           string
	Time           string
	Location       Location
	Coordinates    *Coordinates
	RentCost       decimal.Decimal
	OrganizerEmail string
	Roster         []string
}

// Location is the venue address.  PostalCode holds the eight CEP digits.
type Location struct {
	PostalCode   string
	Street       string
	Number       string
	Neighborhood string
	City         string
	Region       string
	VenueName    string
}

// Coordinates is a latitude/longitude pair filled by the geocoder.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlayerCount returns how many people share the rent (roster plus organizer).
func (m Match) PlayerCount() int { return len(m.Roster) + 1 }

// Involves reports whether email is the organizer or a listed player.
func (m Match) Involves(email string) bool {
	email = NormalizeEmail(email)
	if email == "" {
		return false
	}
	if NormalizeEmail(m.OrganizerEmail) == email {
		return true
	}
	for _, p := range m.Roster {
		if NormalizeEmail(p) == email {
			return true
		}
	}
	return false
}

// SamePostalCode compares postal code digits only.
func (l Location) SamePostalCode(o Location) bool {
	return DigitsOnly(l.PostalCode) == DigitsOnly(o.PostalCode)
}

// SameVenue reports whether two locations point at the same court: equal
// postal code digits and equal street number.
func (l Location) SameVenue(o Location) bool {
	return l.SamePostalCode(o) &&
		strings.EqualFold(strings.TrimSpace(l.Number), strings.TrimSpace(o.Number))
}

// FullAddress renders the address the way the geocoder expects it.
func (l Location) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{l.Street, l.Neighborhood, l.City, l.Region} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, "Brasil")
	return strings.Join(parts, ", ")
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DigitsOnly strips everything but ASCII digits ("01310-100" -> "01310100").
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
