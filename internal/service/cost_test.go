package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerPersonScenario(t *testing.T) {
	got := PerPerson(decimal.RequireFromString("90.00"), 2)
	assert.Equal(t, "30.00", FormatMoney(got))
}

func TestPerPersonMatchesDivisionWithinRounding(t *testing.T) {
	rents := []string{"0.01", "1", "10", "33.33", "90", "100", "150.75", "999.99", "1234.56"}
	half := decimal.RequireFromString("0.005")
	for _, r := range rents {
		rent := decimal.RequireFromString(r)
		for n := 0; n <= 21; n++ {
			got := PerPerson(rent, n)
			exact := rent.Div(decimal.NewFromInt(int64(n + 1)))
			assert.True(t, got.Sub(exact).Abs().LessThanOrEqual(half), "rent=%s n=%d got=%s exact=%s", r, n, got, exact)
			assert.True(t, got.Equal(got.Round(2)), "two decimals at most")
		}
	}
}

func TestPerPersonEdgeCases(t *testing.T) {
	assert.True(t, PerPerson(decimal.NewFromInt(50), -1).IsZero(), "no players")
	assert.True(t, PerPerson(decimal.NewFromInt(50), -7).IsZero())
	assert.Equal(t, "50.00", FormatMoney(PerPerson(decimal.NewFromInt(50), 0)), "organizer alone pays everything")
	assert.Equal(t, "33.33", FormatMoney(PerPerson(decimal.NewFromInt(100), 2)))
	assert.Equal(t, "0.01", FormatMoney(PerPerson(decimal.RequireFromString("0.03"), 3)), "0.0075 rounds half away from zero")
}

func TestParseRent(t *testing.T) {
	cases := map[string]string{
		"90":       "90",
		" 90.00 ":  "90",
		"90,50":    "90.5",
		"1.250,00": "1250",
		"0":        "0",
	}
	for in, want := range cases {
		got, err := ParseRent(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%q -> %s", in, got)
	}
	for _, bad := range []string{"", "abc", "-10", "12,3,4"} {
		_, err := ParseRent(bad)
		assert.ErrorIs(t, err, ErrInvalidRent, bad)
	}
}

func TestPerPersonFromString(t *testing.T) {
	assert.Equal(t, "45.00", FormatMoney(PerPersonFromString("90,00", 1)))
	assert.True(t, PerPersonFromString("not a number", 3).IsZero())
}
