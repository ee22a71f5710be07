package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMagnitude(t *testing.T) {
	tests := []struct {
		in       string
		value    float64
		unit     Unit
		absolute float64
	}{
		{"23.4B", 23.4, UnitBillion, 23.4e9},
		{"520M", 520, UnitMillion, 520e6},
		{"845B", 845, UnitBillion, 845e9},
		{"1.5t", 1.5, UnitTrillion, 1.5e12},
		{"12K", 12, UnitThousand, 12e3},
		{"1,200M", 1200, UnitMillion, 1200e6},
		{"42", 42, UnitNone, 42},
		{" 3.5B ", 3.5, UnitBillion, 3.5e9},
		{"1.2.3B", 1.2, UnitBillion, 1.2e9},
		{"7..5M", 7, UnitMillion, 7e6},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := ParseMagnitude(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.value, m.Value)
			assert.Equal(t, tt.unit, m.Unit)
			assert.InDelta(t, tt.absolute, m.Float(), 1e-3)
		})
	}
}

func TestParseMagnitude_Invalid(t *testing.T) {
	for _, in := range []string{"", "B", "abc", "  ", ".", "..5"} {
		_, err := ParseMagnitude(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestMagnitude_Billions(t *testing.T) {
	assert.InDelta(t, 0.52, MustMagnitude("520M").Billions(), 1e-12)
	assert.InDelta(t, 23.4, MustMagnitude("23.4B").Billions(), 1e-12)
}

func TestMagnitude_JSON(t *testing.T) {
	data, err := json.Marshal(MarketRecord{Price: 1, Volume: MustMagnitude("520M"), MarketCap: MustMagnitude("17B")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":1,"change":0,"volume":"520M","market_cap":"17B"}`, string(data))

	var rec MarketRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, MustMagnitude("17B"), rec.MarketCap)
}

func TestAlert_Satisfied(t *testing.T) {
	above := Alert{Direction: DirectionAbove, TargetPrice: 100}
	assert.True(t, above.Satisfied(100))
	assert.True(t, above.Satisfied(101))
	assert.False(t, above.Satisfied(99.999))

	below := Alert{Direction: DirectionBelow, TargetPrice: 100}
	assert.True(t, below.Satisfied(99.999))
	assert.True(t, below.Satisfied(100))
	assert.False(t, below.Satisfied(100.001))

	assert.Equal(t, DirectionAbove, DirectionFor(101, 100))
	assert.Equal(t, DirectionBelow, DirectionFor(100, 100))
	assert.Equal(t, DirectionBelow, DirectionFor(50, 100))
}
