// Package export renders the record set as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fuelboard/internal/core"
	"fuelboard/internal/pipeline"
)

const (
	sheetName       = "Prices"
	spreadPrecision = 4
)

// Columns is the export header.
var Columns = []string{
	core.ColDate, core.ColHouston, core.ColTexas, core.ColNational,
	"houston_vs_tx", "houston_vs_us", "year", "month", "year_month",
}

// Row is one exported record with its derived columns.
type Row struct {
	Record core.PriceRecord
	Spread core.SpreadRecord
}

// Rows pairs each trend record with its spread. Both slices come from the
// same ascending view, so they align by index.
func Rows(d pipeline.Derived) ([]Row, error) {
	records := d.Trend.Records()
	if len(records) != len(d.Spreads) {
		return nil, fmt.Errorf("trend has %d records but spreads has %d", len(records), len(d.Spreads))
	}
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{Record: r, Spread: d.Spreads[i]}
	}
	return rows, nil
}

func (r Row) strings() []string {
	m := r.Record.Date
	return []string{
		m.Time().Format("2006-01-02"),
		r.Record.Houston.Format(-1),
		r.Record.Texas.Format(-1),
		r.Record.National.Format(-1),
		r.Spread.HoustonMinusTexas.Format(spreadPrecision),
		r.Spread.HoustonMinusUS.Format(spreadPrecision),
		strconv.Itoa(m.Year),
		m.Label(),
		m.String(),
	}
}

func (r Row) values() []any {
	m := r.Record.Date
	return []any{
		m.Time().Format("2006-01-02"),
		cellValue(r.Record.Houston),
		cellValue(r.Record.Texas),
		cellValue(r.Record.National),
		cellValue(r.Spread.HoustonMinusTexas),
		cellValue(r.Spread.HoustonMinusUS),
		m.Year,
		m.Label(),
		m.String(),
	}
}

// cellValue leaves null prices as empty cells.
func cellValue(p core.Price) any {
	if !p.Valid {
		return nil
	}
	return p.Value
}

// WriteCSV writes rows with a header. Null prices are empty fields.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.strings()); err != nil {
			return fmt.Errorf("write %s: %w", r.Record.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes rows to a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.values()
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write %s: %w", r.Record.Date, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
