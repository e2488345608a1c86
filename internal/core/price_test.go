package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in    string
		want  Price
		valid bool
	}{
		{"3.129", Some(3.129), true},
		{" $3.10 ", Some(3.10), true},
		{"3,25", Some(3.25), true},
		{"-0.5", Some(-0.5), true},
		{"", Null, true},
		{"NA", Null, true},
		{"n/a", Null, true},
		{"-", Null, true},
		{"abc", Null, false},
		{"1.2.3", Null, false},
		{"Inf", Null, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePrice(tc.in)
			if !tc.valid {
				assert.ErrorIs(t, err, ErrInvalidPrice)
				assert.False(t, got.Valid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want.Valid, got.Valid)
			assert.InDelta(t, tc.want.Value, got.Value, 1e-12)
		})
	}
}

func TestPriceArithmetic(t *testing.T) {
	assert.InDelta(t, 0.15, Some(3.30).Sub(Some(3.15)).Value, 1e-12)
	assert.False(t, Some(3).Sub(Null).Valid)
	assert.False(t, Null.Sub(Some(3)).Valid)

	assert.InDelta(t, 0.10, Some(3.30).PctChange(Some(3.00)).Value, 1e-12)
	assert.False(t, Some(3).PctChange(Some(0)).Valid, "zero prior yields null")
	assert.False(t, Some(3).PctChange(Null).Valid)
	assert.False(t, Null.PctChange(Some(3)).Valid)

	assert.False(t, Some(math.NaN()).Valid)
	assert.False(t, Some(math.Inf(1)).Valid)
}

func TestPriceMean(t *testing.T) {
	assert.InDelta(t, 2.0, Mean([]Price{Some(1), Null, Some(3)}).Value, 1e-12)
	assert.False(t, Mean([]Price{Null, Null}).Valid)
	assert.False(t, Mean(nil).Valid)
}

func TestPriceJSONAndFormat(t *testing.T) {
	b, err := json.Marshal([]Price{Some(3.5), Null})
	require.NoError(t, err)
	assert.Equal(t, `[3.5,null]`, string(b))

	var ps []Price
	require.NoError(t, json.Unmarshal(b, &ps))
	assert.Equal(t, []Price{Some(3.5), Null}, ps)

	assert.Equal(t, "3.130", Some(3.13).Format(3))
	assert.Equal(t, "", Null.Format(3))
	assert.Nil(t, Null.Ptr())
	assert.Equal(t, 3.5, *Some(3.5).Ptr())
}
