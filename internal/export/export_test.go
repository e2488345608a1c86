package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fuelboard/internal/core"
	"fuelboard/internal/pipeline"
)

func derived(t *testing.T) pipeline.Derived {
	t.Helper()
	d, err := pipeline.Run(context.Background(), core.Table{
		Source: "test",
		Header: []string{"date", "gasoline_price", "texas_avg", "national_avg"},
		Rows: [][]string{
			{"2023-02-01", "3.30", "3.15", "3.25"},
			{"2023-01-01", "3.00", "3.10", "3.20"},
			{"2023-03-01", "", "3.20", "3.30"},
		},
	}, pipeline.DefaultOptions())
	require.NoError(t, err)
	return d.Derived
}

func TestRows_Aligns(t *testing.T) {
	rows, err := Rows(derived(t))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, core.NewMonth(2023, 1), rows[0].Record.Date)
	assert.Equal(t, rows[0].Record.Date, rows[0].Spread.Date)
}

func TestRows_Mismatch(t *testing.T) {
	d := derived(t)
	d.Spreads = d.Spreads[:1]
	_, err := Rows(d)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	rows, err := Rows(derived(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{"2023-02-01", "3.3", "3.15", "3.25", "0.1500", "0.0500", "2023", "Feb", "2023-02"}, records[2])
	// Missing Houston price leaves the price and both spreads empty.
	assert.Equal(t, []string{"2023-03-01", "", "3.2", "3.3", "", "", "2023", "Mar", "2023-03"}, records[3])
}

func TestWriteXLSX(t *testing.T) {
	rows, err := Rows(derived(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Prices"}, f.GetSheetList())
	got, err := f.GetRows("Prices")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, Columns, got[0])
	assert.Equal(t, "2023-01-01", got[1][0])
	assert.Equal(t, "3", got[1][1])
	assert.Equal(t, "Jan", got[1][7])

	v, err := f.GetCellValue("Prices", "B4")
	require.NoError(t, err)
	assert.Empty(t, v)
}
