package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bola-na-rede/internal/model"
)

func slot(id int64, date, clock, cep, number string) model.Match {
	return model.Match{
		ID:       id,
		Date:     date,
		Time:     clock,
		Location: model.Location{PostalCode: cep, Number: number},
	}
}

func TestHasConflictPresentAndAbsent(t *testing.T) {
	existing := []model.Match{
		slot(1, "10/05/2025", "18:00", "01310100", "100"),
		slot(2, "10/05/2025", "20:00", "01310100", "100"),
		slot(3, "11/05/2025", "18:00", "22041001", "5"),
	}

	for _, m := range existing {
		cand := m
		cand.ID = 0
		assert.True(t, HasConflict(cand, existing, 0), "triple of %d is present", m.ID)
	}

	absent := []model.Match{
		slot(0, "10/05/2025", "19:00", "01310100", "100"),
		slot(0, "12/05/2025", "18:00", "01310100", "100"),
		slot(0, "10/05/2025", "18:00", "01310200", "100"),
	}
	for _, cand := range absent {
		assert.False(t, HasConflict(cand, existing, 0), "%+v", cand)
	}
	assert.False(t, HasConflict(absent[0], nil, 0))
}

func TestHasConflictExcludesSelf(t *testing.T) {
	existing := []model.Match{slot(1, "10/05/2025", "18:00", "01310100", "100")}
	cand := slot(1, "10/05/2025", "18:00", "01310100", "100")

	assert.False(t, HasConflict(cand, existing, 1), "editing in place")
	assert.True(t, HasConflict(cand, existing, 2))
}

func TestHasConflictVenueKey(t *testing.T) {
	existing := []model.Match{
		slot(1, "10/05/2025", "18:00", "01310100", "1000"),
		slot(2, "10/05/2025", "20:00", "01310100", "1000"),
	}
	other := slot(0, "10/05/2025", "18:00", "01310-100", "1001")

	assert.True(t, HasConflict(other, existing, 0), "create: same postal code is enough")

	other.ID = 2
	assert.False(t, HasConflict(other, existing, 2), "edit: different number is another court")
	other.Location.Number = " 1000 "
	assert.True(t, HasConflict(other, existing, 2))
}

func TestHasConflictComparesInstants(t *testing.T) {
	existing := []model.Match{slot(1, "01/05/2025", "09:00", "01310-100", "100")}
	cand := slot(0, "1/5/2025", "9:00", "01310100", "100")
	assert.True(t, HasConflict(cand, existing, 0))
}

func TestHasConflictFallsBackToStrings(t *testing.T) {
	existing := []model.Match{slot(1, "sometime", "soon", "01310100", "100")}
	assert.True(t, HasConflict(slot(0, "sometime", "soon", "01310100", "100"), existing, 0))
	assert.False(t, HasConflict(slot(0, "10/05/2025", "18:00", "01310100", "100"), existing, 0))
}

func TestParseSchedule(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	got, err := ParseSchedule("10/05/2025", "18:00", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 5, 10, 21, 0, 0, 0, time.UTC)))

	d, c := FormatSchedule(time.Date(2025, 1, 2, 9, 5, 0, 0, loc))
	assert.Equal(t, "02/01/2025", d)
	assert.Equal(t, "09:05", c)

	for _, bad := range [][2]string{{"31/02/2025", "10:00"}, {"10-05-2025", "18:00"}, {"10/05/2025", "25:00"}, {"", ""}} {
		_, err := ParseSchedule(bad[0], bad[1], loc)
		assert.Error(t, err, "%v", bad)
	}
}
