package core

import (
	"encoding/json"
	"sort"
	"time"
)

// SeasonalKey addresses one heatmap cell.
type SeasonalKey struct {
	Month time.Month
	Year  int
}

// SeasonalMatrix maps (month-of-year, year) to the average Houston price.
// A key is present when at least one record fell into it; its value may still
// be null when every such record lacked a Houston price.
type SeasonalMatrix struct {
	years []int
	cells map[SeasonalKey]Price
}

type SeasonalRow struct {
	Month  int     `json:"month"`
	Label  string  `json:"label"`
	Values []Price `json:"values"`
}

// NewSeasonalMatrix copies cells and derives the sorted year axis from them.
func NewSeasonalMatrix(cells map[SeasonalKey]Price) SeasonalMatrix {
	m := SeasonalMatrix{cells: make(map[SeasonalKey]Price, len(cells))}
	seen := map[int]bool{}
	for k, v := range cells {
		m.cells[k] = v
		if !seen[k.Year] {
			seen[k.Year] = true
			m.years = append(m.years, k.Year)
		}
	}
	sort.Ints(m.years)
	return m
}

// Years returns the column axis in ascending order.
func (m SeasonalMatrix) Years() []int {
	return append([]int(nil), m.years...)
}

// Cell returns the value for a month and year and whether the key exists.
func (m SeasonalMatrix) Cell(month time.Month, year int) (Price, bool) {
	v, ok := m.cells[SeasonalKey{Month: month, Year: year}]
	return v, ok
}

// Len returns the number of populated keys.
func (m SeasonalMatrix) Len() int { return len(m.cells) }

// Rows lays the matrix out as 12 month rows over the year columns; absent
// cells are null.
func (m SeasonalMatrix) Rows() []SeasonalRow {
	rows := make([]SeasonalRow, 12)
	for i := range rows {
		month := time.Month(i + 1)
		row := SeasonalRow{Month: i + 1, Label: MonthLabel(i + 1), Values: make([]Price, len(m.years))}
		for j, y := range m.years {
			row.Values[j] = m.cells[SeasonalKey{Month: month, Year: y}]
		}
		rows[i] = row
	}
	return rows
}

func (m SeasonalMatrix) MarshalJSON() ([]byte, error) {
	years := m.years
	if years == nil {
		years = []int{}
	}
	return json.Marshal(struct {
		Years []int         `json:"years"`
		Rows  []SeasonalRow `json:"rows"`
	}{Years: years, Rows: m.Rows()})
}
