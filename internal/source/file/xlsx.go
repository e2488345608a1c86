package file

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fuelboard/internal/core"
)

// readWorkbook reads one worksheet. With no sheet name the first sheet that
// has any rows is used.
func readWorkbook(path, sheet string) (core.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return core.Table{}, err
	}
	defer f.Close()

	if sheet == "" {
		for _, name := range f.GetSheetList() {
			if rows, err := f.GetRows(name); err == nil && len(rows) > 0 {
				sheet = name
				break
			}
		}
		if sheet == "" {
			return core.Table{}, nil
		}
	}

	// Raw values keep prices free of currency formats and dates as serials.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return core.Table{}, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return core.Table{}, nil
	}
	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	convertDateSerials(rows, date1904)
	return core.Table{Header: rows[0], Rows: rows[1:]}, nil
}

// convertDateSerials rewrites Excel date serials in the date column as
// ISO dates. Text dates are left for the loader to parse.
func convertDateSerials(rows [][]string, date1904 bool) {
	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), core.ColDate) {
			col = i
			break
		}
	}
	if col < 0 {
		return
	}
	for _, r := range rows[1:] {
		if col >= len(r) {
			continue
		}
		if _, err := core.ParseMonth(r[col]); err == nil {
			continue
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(r[col]), 64)
		if err != nil || serial <= 0 {
			continue
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			continue
		}
		r[col] = t.Format("2006-01-02")
	}
}
