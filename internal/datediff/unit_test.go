package datediff

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnits_CoarsestFirst(t *testing.T) {
	units := Units()
	require.Len(t, units, 9)
	assert.Equal(t, Year, units[0])
	assert.Equal(t, Nanosecond, units[len(units)-1])
	for i := 1; i < len(units); i++ {
		assert.Less(t, units[i-1], units[i])
	}
}

func TestUnit_String(t *testing.T) {
	assert.Equal(t, "year", Year.String())
	assert.Equal(t, "microsecond", Microsecond.String())
	assert.Equal(t, "Unit(42)", Unit(42).String())
	assert.False(t, Unit(42).Valid())
	assert.False(t, Unit(-1).Valid())
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
	}{
		{"year", Year},
		{"YEAR", Year},
		{" Day ", Day},
		{"yyyy", Year},
		{"mm", Month},
		{"m", Month},
		{"dd", Day},
		{"hh", Hour},
		{"mi", Minute},
		{"n", Minute},
		{"ss", Second},
		{"ms", Millisecond},
		{"mcs", Microsecond},
		{"ns", Nanosecond},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseUnit(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseUnit_Unknown(t *testing.T) {
	for _, in := range []string{"", "week", "quarter", "dayofyear", "42"} {
		_, err := ParseUnit(in)
		require.Error(t, err, in)
		assert.True(t, IsInvalidUnit(err))
	}
}

func TestUnit_JSON(t *testing.T) {
	type wrapper struct {
		Unit Unit `json:"unit"`
	}

	data, err := json.Marshal(wrapper{Unit: Hour})
	require.NoError(t, err)
	assert.JSONEq(t, `{"unit":"hour"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"unit":"mcs"}`), &w))
	assert.Equal(t, Microsecond, w.Unit)

	_, err = json.Marshal(wrapper{Unit: Unit(42)})
	assert.Error(t, err)
}
