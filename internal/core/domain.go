package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Series names used in long-format output and exports.
const (
	SeriesHouston  = "Houston Average Price"
	SeriesTexas    = "Texas Statewide Average"
	SeriesNational = "U.S. National Average"
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type (
	// Month is a calendar month key. Day of month is never significant.
	Month struct {
		Year  int
		Month time.Month
	}

	// PriceRecord is one validated input row.
	PriceRecord struct {
		Date     Month `json:"date"`
		Houston  Price `json:"houston_price"`
		Texas    Price `json:"texas_avg"`
		National Price `json:"national_avg"`
	}

	SpreadRecord struct {
		Date              Month `json:"date"`
		HoustonMinusTexas Price `json:"houston_minus_texas"`
		HoustonMinusUS    Price `json:"houston_minus_us"`
	}

	ChangeRecord struct {
		Date      Month `json:"date"`
		MoMChange Price `json:"mom_pct_change"`
		YoYChange Price `json:"yoy_pct_change"`
	}

	// YearlyAverage holds per-series means over the months present for Year.
	YearlyAverage struct {
		Year     int   `json:"year"`
		Houston  Price `json:"houston_avg"`
		Texas    Price `json:"texas_avg"`
		National Price `json:"national_avg"`
	}

	// MonthProfile is the mean Houston price for one calendar month across years.
	MonthProfile struct {
		Month   int    `json:"month"`
		Label   string `json:"label"`
		Houston Price  `json:"houston_avg"`
	}

	// SeriesPoint is one long-format observation used by multi-line charts.
	SeriesPoint struct {
		Date   Month   `json:"date"`
		Series string  `json:"series"`
		Price  float64 `json:"price"`
	}

	// Latest carries the scalars shown in the summary cards.
	Latest struct {
		Date              Month `json:"date"`
		Houston           Price `json:"latest_houston"`
		Texas             Price `json:"latest_texas"`
		National          Price `json:"latest_us"`
		HoustonMinusTexas Price `json:"latest_spread_houston_texas"`
		HoustonMinusUS    Price `json:"latest_spread_houston_us"`
	}

	// TrendFit is an ordinary least squares line over a trailing spread window.
	TrendFit struct {
		Series    string  `json:"series"`
		From      Month   `json:"from"`
		To        Month   `json:"to"`
		Points    int     `json:"points"`
		Slope     float64 `json:"slope"`
		Intercept float64 `json:"intercept"`
		OK        bool    `json:"ok"`
	}
)

// NewMonth builds a Month, normalising out-of-range months (13 -> January next year).
func NewMonth(year int, month time.Month) Month {
	return MonthOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// MonthOf truncates t to its calendar month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Index returns a monotonically increasing month counter.
func (m Month) Index() int {
	return m.Year*12 + int(m.Month) - 1
}

func (m Month) AddMonths(n int) Month {
	return NewMonth(m.Year, m.Month+time.Month(n))
}

func (m Month) Before(o Month) bool { return m.Index() < o.Index() }

func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

// Time returns the first day of the month in UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Label returns the short month name, e.g. "Jan".
func (m Month) Label() string {
	return MonthLabel(int(m.Month))
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return fmt.Errorf("parse month %q: %w", s, err)
	}
	*m = MonthOf(t)
	return nil
}

// MonthLabel returns the short English name for a 1-12 month number.
func MonthLabel(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthLabels[month-1]
}

// Complete reports whether all three prices are present.
func (r PriceRecord) Complete() bool {
	return r.Houston.Valid && r.Texas.Valid && r.National.Valid
}

// Usable reports whether the record carries at least one price.
func (r PriceRecord) Usable() bool {
	return r.Houston.Valid || r.Texas.Valid || r.National.Valid
}
