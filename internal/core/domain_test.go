package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthArithmetic(t *testing.T) {
	m := NewMonth(2023, time.December)
	assert.Equal(t, NewMonth(2024, time.January), m.AddMonths(1))
	assert.Equal(t, NewMonth(2022, time.December), m.AddMonths(-12))
	assert.Equal(t, NewMonth(2024, time.February), NewMonth(2023, 14))
	assert.True(t, NewMonth(2023, time.March).Before(NewMonth(2023, time.April)))
	assert.Equal(t, 12, NewMonth(2024, time.January).Index()-NewMonth(2023, time.January).Index())
	assert.Equal(t, "Dec", m.Label())
	assert.Equal(t, "2023-12", m.String())
}

func TestMonthJSON(t *testing.T) {
	b, err := json.Marshal(NewMonth(2024, time.March))
	require.NoError(t, err)
	assert.Equal(t, `"2024-03"`, string(b))

	var m Month
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, NewMonth(2024, time.March), m)
	assert.Error(t, json.Unmarshal([]byte(`"March"`), &m))
}

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in   string
		want Month
		ok   bool
	}{
		{"2023-01-15", NewMonth(2023, time.January), true},
		{"2023-01", NewMonth(2023, time.January), true},
		{" 2023/02/01 ", NewMonth(2023, time.February), true},
		{"03/31/2024", NewMonth(2024, time.March), true},
		{"2024-05-01T00:00:00Z", NewMonth(2024, time.May), true},
		{"Jun 2022", NewMonth(2022, time.June), true},
		{"202207", NewMonth(2022, time.July), true},
		{"", Month{}, false},
		{"yesterday", Month{}, false},
		{"2023-13-01", Month{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMonth(tc.in)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRecordUsability(t *testing.T) {
	r := PriceRecord{Date: NewMonth(2023, 1), Houston: Some(3)}
	assert.True(t, r.Usable())
	assert.False(t, r.Complete())
	assert.False(t, PriceRecord{Date: NewMonth(2023, 1)}.Usable())
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
		kind     string
	}{
		{&SchemaError{Columns: []string{"texas_avg"}}, ErrSchema, "schema"},
		{&SchemaError{Column: "date", Row: 3, Value: "x", Reason: "unparseable date"}, ErrSchema, "schema"},
		{&EmptyDatasetError{}, ErrEmptyDataset, "empty_dataset"},
		{&DuplicateDateError{Date: NewMonth(2023, 1), Rows: []int{1, 2}}, ErrDuplicateDate, "duplicate_date"},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("load: %w", tc.err)
		assert.ErrorIs(t, wrapped, tc.sentinel)
		assert.Equal(t, tc.kind, ErrorKind(wrapped))
	}
	assert.Equal(t, "source", ErrorKind(errors.New("boom")))
	assert.Equal(t, "", ErrorKind(nil))

	var se *SchemaError
	require.ErrorAs(t, fmt.Errorf("x: %w", &SchemaError{Column: "date", Row: 7, Value: "?", Reason: "unparseable date"}), &se)
	assert.Equal(t, 7, se.Row)
	assert.Contains(t, se.Error(), "row 7")
	assert.Contains(t, (&DuplicateDateError{Date: NewMonth(2023, 1), Rows: []int{1, 4}}).Error(), "2023-01 on rows 1, 4")
}

func TestSeasonalMatrixRows(t *testing.T) {
	m := NewSeasonalMatrix(map[SeasonalKey]Price{
		{Month: time.January, Year: 2024}: Some(3.1),
		{Month: time.January, Year: 2023}: Some(2.9),
		{Month: time.July, Year: 2023}:    Null,
	})
	assert.Equal(t, []int{2023, 2024}, m.Years())
	assert.Equal(t, 3, m.Len())

	rows := m.Rows()
	require.Len(t, rows, 12)
	assert.Equal(t, "Jan", rows[0].Label)
	assert.Equal(t, []Price{Some(2.9), Some(3.1)}, rows[0].Values)
	assert.Equal(t, []Price{Null, Null}, rows[6].Values)

	v, ok := m.Cell(time.July, 2023)
	assert.True(t, ok)
	assert.False(t, v.Valid)
	_, ok = m.Cell(time.July, 2024)
	assert.False(t, ok)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"years":[2023,2024]`)
	assert.Contains(t, string(b), `{"month":1,"label":"Jan","values":[2.9,3.1]}`)
}
