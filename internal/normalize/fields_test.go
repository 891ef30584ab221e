package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name        string
		raw         interface{}
		expected    int
		expectError bool
	}{
		{name: "Integer", raw: 3200, expected: 3200},
		{name: "Float", raw: 3200.0, expected: 3200},
		{name: "JSON number", raw: json.Number("4100"), expected: 4100},
		{name: "Formatted string", raw: "$4,400/mo", expected: 4400},
		{name: "Range takes first amount", raw: "$3,000 - $3,500", expected: 3000},
		{name: "Cents are dropped", raw: "$2,999.99", expected: 2999},
		{name: "Missing", raw: nil, expectError: true},
		{name: "No digits", raw: "Contact for price", expectError: true},
		{name: "Zero", raw: 0, expectError: true},
		{name: "Negative", raw: -50, expectError: true},
		{name: "Unsupported type", raw: true, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := Price(tt.raw)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrMissingPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, price)
		})
	}
}

func TestOptionalFields(t *testing.T) {
	t.Run("Beds", func(t *testing.T) {
		assert.Equal(t, 3, *Beds(3))
		assert.Equal(t, 4, *Beds("4 bds"))
		assert.Equal(t, 0, *Beds(0.0))
		assert.Nil(t, Beds(nil))
		assert.Nil(t, Beds("Studio"))
		assert.Nil(t, Beds(-1))
	})

	t.Run("Baths", func(t *testing.T) {
		assert.Equal(t, 2.5, *Baths(2.5))
		assert.Equal(t, 2.0, *Baths("2 ba"))
		assert.Equal(t, 1.5, *Baths(json.Number("1.5")))
		assert.Nil(t, Baths(""))
		assert.Nil(t, Baths(map[string]interface{}{}))
	})

	t.Run("Sqft", func(t *testing.T) {
		assert.Equal(t, 1850, *Sqft("1,850 sqft"))
		assert.Equal(t, 2100, *Sqft(2100.0))
		assert.Nil(t, Sqft("-- sqft"))
		assert.Nil(t, Sqft(nil))
	})
}
