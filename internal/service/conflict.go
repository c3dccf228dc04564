package service

import (
	"time"

	"github.com/iliyamo/bola-na-rede/internal/model"
)

// HasConflict reports whether any record in existing, other than the one
// with id excludeID, is booked at the same venue for the same date and time.
// Pass excludeID 0 when checking a new match: a new match collides with any
// match on the same postal code.  An edit (excludeID set) only collides when
// the street number matches too.
//
// Date and time are compared as instants, so "1/5/2025" and "01/05/2025"
// collide.  If either side does not parse, the raw strings are compared.
func HasConflict(candidate model.Match, existing []model.Match, excludeID int64) bool {
	want, wantErr := ParseSchedule(candidate.Date, candidate.Time, time.UTC)
	sameVenue := candidate.Location.SamePostalCode
	if excludeID != 0 {
		sameVenue = candidate.Location.SameVenue
	}
	for _, m := range existing {
		if excludeID != 0 && m.ID == excludeID {
			continue
		}
		if !sameVenue(m.Location) {
			continue
		}
		got, gotErr := ParseSchedule(m.Date, m.Time, time.UTC)
		if wantErr == nil && gotErr == nil {
			if want.Equal(got) {
				return true
			}
			continue
		}
		if candidate.Date == m.Date && candidate.Time == m.Time {
			return true
		}
	}
	return false
}
