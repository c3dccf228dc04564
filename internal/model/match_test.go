package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchInvolves(t *testing.T) {
	m := Match{OrganizerEmail: "Org@x.com", Roster: []string{"a@x.com", " B@x.com "}}

	assert.True(t, m.Involves("org@x.com"))
	assert.True(t, m.Involves("b@x.com"))
	assert.False(t, m.Involves("c@x.com"))
	assert.False(t, m.Involves(""))
	assert.Equal(t, 3, m.PlayerCount())
}

func TestLocationSameVenue(t *testing.T) {
	a := Location{PostalCode: "01310-100", Number: "12"}
	assert.True(t, a.SameVenue(Location{PostalCode: "01310100", Number: " 12 "}))
	assert.False(t, a.SameVenue(Location{PostalCode: "01310100", Number: "13"}))
	assert.False(t, a.SameVenue(Location{PostalCode: "01310101", Number: "12"}))
	assert.True(t, a.SamePostalCode(Location{PostalCode: "01310-100", Number: "13"}))
	assert.False(t, a.SamePostalCode(Location{PostalCode: "01310101", Number: "12"}))
}

func TestLocationFullAddress(t *testing.T) {
	l := Location{Street: "Av. Paulista", Neighborhood: "Bela Vista", City: "São Paulo", Region: "SP"}
	assert.Equal(t, "Av. Paulista, Bela Vista, São Paulo, SP, Brasil", l.FullAddress())
	assert.Equal(t, "Brasil", Location{}.FullAddress())
}
