package pipeline

import (
	"time"

	"fuelboard/internal/core"
)

func table(rows ...[]string) core.Table {
	return core.Table{
		Source: "test",
		Header: []string{"date", "gasoline_price", "texas_avg", "national_avg"},
		Rows:   rows,
	}
}

func row(date, h, t, n string) []string { return []string{date, h, t, n} }

func month(y int, m time.Month) core.Month { return core.NewMonth(y, m) }
