package pipeline

import (
	"sort"
	"strings"

	"fuelboard/internal/core"
)

// Validated is the Loader's output: typed records in input order with the
// 1-based data row each one came from.
type Validated struct {
	Records    []core.PriceRecord
	SourceRows []int

	RowsRead     int // non-blank data rows
	Dropped      int // rows discarded by the missing-data policy
	InvalidCells int // price cells that were present but not numeric
}

type columnIndices struct {
	date, houston, texas, national int
}

// Load parses a raw table into PriceRecords.
//
// It fails with *core.SchemaError when a required column is absent or a date
// cannot be parsed, and with *core.EmptyDatasetError when no usable rows
// remain. Non-numeric prices are nulled and then handled per opts.Missing.
func Load(t core.Table, opts Options) (Validated, error) {
	opts = opts.withDefaults()

	cols, err := findColumns(t.Header)
	if err != nil {
		return Validated{}, err
	}

	var v Validated
	usable := 0
	for i, row := range t.Rows {
		rowNum := i + 1
		if blankRow(row) {
			continue
		}
		v.RowsRead++

		rawDate := cell(row, cols.date)
		month, err := core.ParseMonth(rawDate)
		if err != nil {
			return Validated{}, &core.SchemaError{
				Column: core.ColDate,
				Row:    rowNum,
				Value:  rawDate,
				Reason: "unparseable date",
			}
		}

		rec := core.PriceRecord{Date: month}
		rec.Houston = v.parsePrice(cell(row, cols.houston))
		rec.Texas = v.parsePrice(cell(row, cols.texas))
		rec.National = v.parsePrice(cell(row, cols.national))

		if opts.Missing == MissingDrop && !rec.Complete() {
			v.Dropped++
			continue
		}
		// Kept even with no price at all, so the month shows as a gap.
		if rec.Usable() {
			usable++
		}
		v.Records = append(v.Records, rec)
		v.SourceRows = append(v.SourceRows, rowNum)
	}

	if usable == 0 {
		return Validated{}, &core.EmptyDatasetError{Rows: v.RowsRead, Dropped: v.Dropped}
	}
	return v, nil
}

func (v *Validated) parsePrice(raw string) core.Price {
	p, err := core.ParsePrice(raw)
	if err != nil {
		v.InvalidCells++
	}
	return p
}

func findColumns(header []string) (columnIndices, error) {
	idx := map[string]int{}
	for i, h := range header {
		name := normalizeColumn(h)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	var missing []string
	lookup := func(name string) int {
		i, ok := idx[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	cols := columnIndices{
		date:     lookup(core.ColDate),
		houston:  lookup(core.ColHouston),
		texas:    lookup(core.ColTexas),
		national: lookup(core.ColNational),
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return columnIndices{}, &core.SchemaError{Columns: missing}
	}
	return cols, nil
}

// normalizeColumn strips BOM and zero-width characters and lowercases.
func normalizeColumn(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "").Replace(s)
	return strings.ToLower(strings.TrimSpace(s))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
