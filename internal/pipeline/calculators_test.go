package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelboard/internal/core"
)

func ascending(t *testing.T, in core.Table) OrderedSeries {
	t.Helper()
	v, err := Load(in, DefaultOptions())
	require.NoError(t, err)
	asc, _, err := BuildViews(v, DuplicateFail)
	require.NoError(t, err)
	return asc
}

func TestScenarioA_SpreadAndMoM(t *testing.T) {
	asc := ascending(t, table(
		row("2023-01", "3.00", "3.10", "3.20"),
		row("2023-02", "3.30", "3.15", "3.25"),
	))

	changes := Changes(asc)
	require.Len(t, changes, 2)
	assert.False(t, changes[0].MoMChange.Valid)
	require.True(t, changes[1].MoMChange.Valid)
	assert.InDelta(t, 0.10, changes[1].MoMChange.Value, 1e-9)

	spreads := Spreads(asc)
	require.Len(t, spreads, 2)
	assert.InDelta(t, 0.15, spreads[1].HoustonMinusTexas.Value, 1e-9)
	assert.InDelta(t, 0.05, spreads[1].HoustonMinusUS.Value, 1e-9)
	assert.InDelta(t, -0.10, spreads[0].HoustonMinusTexas.Value, 1e-9)
}

func TestScenarioB_YoYUsesCalendarMatch(t *testing.T) {
	asc := ascending(t, table(
		row("2023-01", "2.00", "2", "2"),
		row("2023-03", "2.50", "2", "2"),
		row("2023-04", "2.60", "2", "2"),
		row("2023-05", "2.70", "2", "2"),
		row("2023-06", "2.80", "2", "2"),
		row("2023-07", "2.90", "2", "2"),
		row("2023-08", "3.00", "2", "2"),
		row("2023-09", "3.10", "2", "2"),
		row("2023-10", "3.20", "2", "2"),
		row("2023-11", "3.30", "2", "2"),
		row("2023-12", "3.40", "2", "2"),
		row("2024-01", "3.00", "2", "2"),
		row("2024-02", "3.10", "2", "2"),
	))

	changes := Changes(asc)
	byDate := map[core.Month]core.ChangeRecord{}
	for _, c := range changes {
		byDate[c.Date] = c
	}

	jan24 := byDate[month(2024, time.January)]
	require.True(t, jan24.YoYChange.Valid)
	assert.InDelta(t, 0.5, jan24.YoYChange.Value, 1e-9)

	// 2023-02 is absent, so there is nothing exactly one year earlier.
	assert.False(t, byDate[month(2024, time.February)].YoYChange.Valid)

	// MoM stays positional across the gap.
	mar23 := byDate[month(2023, time.March)]
	require.True(t, mar23.MoMChange.Valid)
	assert.InDelta(t, 0.25, mar23.MoMChange.Value, 1e-9)

	for _, c := range changes {
		if c.Date.Year == 2023 {
			assert.False(t, c.YoYChange.Valid, c.Date.String())
		}
	}
}

func TestChanges_NullAndZeroPrior(t *testing.T) {
	asc := ascending(t, table(
		row("2023-01", "0", "1", "1"),
		row("2023-02", "3.00", "1", "1"),
		row("2023-03", "", "1", "1"),
		row("2023-04", "3.30", "1", "1"),
		row("2024-01", "3.50", "1", "1"),
		row("2024-03", "3.60", "1", "1"),
	))

	c := Changes(asc)
	require.Len(t, c, 6)
	assert.False(t, c[1].MoMChange.Valid, "zero prior")
	assert.False(t, c[2].MoMChange.Valid, "null current")
	assert.False(t, c[3].MoMChange.Valid, "null prior")
	assert.False(t, c[4].YoYChange.Valid, "zero prior a year back")
	assert.False(t, c[5].YoYChange.Valid, "null prior a year back")
}

func TestMoMLaw(t *testing.T) {
	asc := ascending(t, table(
		row("2022-01", "2.71", "1", "1"),
		row("2022-02", "2.93", "1", "1"),
		row("2022-04", "3.47", "1", "1"),
		row("2022-05", "4.12", "1", "1"),
		row("2022-06", "4.66", "1", "1"),
	))
	c := Changes(asc)
	for i := 1; i < asc.Len(); i++ {
		prev, cur := asc.At(i-1).Houston.Value, asc.At(i).Houston.Value
		want := (cur - prev) / prev
		require.True(t, c[i].MoMChange.Valid)
		assert.InEpsilon(t, want, c[i].MoMChange.Value, 1e-9)
	}
}

func TestSpreads_MissingPropagates(t *testing.T) {
	asc := ascending(t, table(
		row("2023-01", "", "3.10", "3.20"),
		row("2023-02", "3.30", "", "3.25"),
		row("2023-03", "3.40", "3.35", "3.30"),
	))

	s := Spreads(asc)
	require.Len(t, s, 3)
	for _, i := range []int{0, 1} {
		assert.False(t, s[i].HoustonMinusTexas.Valid)
		assert.False(t, s[i].HoustonMinusUS.Valid)
	}
	r := asc.At(2)
	assert.InDelta(t, -(r.Texas.Value - r.Houston.Value), s[2].HoustonMinusTexas.Value, 1e-12)
}

func TestSeasonal(t *testing.T) {
	asc := ascending(t, table(
		row("2022-01", "3.00", "1", "1"),
		row("2023-01", "3.20", "1", "1"),
		row("2023-07", "", "1", "1"),
		row("2023-08", "3.60", "1", "1"),
	))

	m := Seasonal(asc)
	assert.Equal(t, []int{2022, 2023}, m.Years())

	p, ok := m.Cell(time.January, 2023)
	require.True(t, ok)
	assert.Equal(t, core.Some(3.20), p)

	p, ok = m.Cell(time.July, 2023)
	require.True(t, ok)
	assert.False(t, p.Valid)

	_, ok = m.Cell(time.August, 2022)
	assert.False(t, ok)
}

func TestSeasonal_AveragesSharedCell(t *testing.T) {
	v, err := Load(table(
		row("2023-01-01", "3.00", "1", "1"),
		row("2023-01-15", "3.40", "1", "1"),
	), DefaultOptions())
	require.NoError(t, err)

	// Bypass duplicate resolution to feed the aggregator two records in one month.
	asc := newOrderedSeries(v.Records, Ascending)
	p, ok := Seasonal(asc).Cell(time.January, 2023)
	require.True(t, ok)
	assert.InDelta(t, 3.20, p.Value, 1e-9)
}

func TestYearly(t *testing.T) {
	asc := ascending(t, table(
		row("2023-11", "3.00", "2.00", ""),
		row("2022-01", "2.00", "", ""),
		row("2023-12", "4.00", "", ""),
		row("2022-02", "", "3.00", ""),
	))

	y := Yearly(asc)
	require.Len(t, y, 2)
	assert.Equal(t, 2022, y[0].Year)
	assert.Equal(t, core.Some(2.00), y[0].Houston)
	assert.Equal(t, core.Some(3.00), y[0].Texas)
	assert.False(t, y[0].National.Valid)

	assert.Equal(t, 2023, y[1].Year)
	assert.InDelta(t, 3.50, y[1].Houston.Value, 1e-9)
	assert.Equal(t, core.Some(2.00), y[1].Texas)
	assert.False(t, y[1].National.Valid)
}

func TestMonthlyProfile(t *testing.T) {
	asc := ascending(t, table(
		row("2022-06", "3.00", "1", "1"),
		row("2023-06", "4.00", "1", "1"),
		row("2023-07", "5.00", "1", "1"),
	))

	p := MonthlyProfile(asc)
	require.Len(t, p, 12)
	assert.Equal(t, "Jun", p[5].Label)
	assert.InDelta(t, 3.50, p[5].Houston.Value, 1e-9)
	assert.Equal(t, core.Some(5.00), p[6].Houston)
	assert.False(t, p[0].Houston.Valid)
}

func TestLongSeries(t *testing.T) {
	asc := ascending(t, table(
		row("2023-01", "3.00", "3.10", ""),
		row("2023-02", "3.30", "3.15", "3.25"),
	))

	points := LongSeries(asc)
	require.Len(t, points, 5)
	assert.Equal(t, core.SeriesPoint{Date: month(2023, time.January), Series: core.SeriesHouston, Price: 3.00}, points[0])
	assert.Equal(t, core.SeriesNational, points[4].Series)
	assert.Equal(t, month(2023, time.February), points[4].Date)
}

func TestFitSpreadTrend(t *testing.T) {
	var spreads []core.SpreadRecord
	start := month(2022, time.June)
	for i := 0; i < 18; i++ {
		spreads = append(spreads, core.SpreadRecord{
			Date:              start.AddMonths(i),
			HoustonMinusTexas: core.Some(0.5 + 0.02*float64(i)),
			HoustonMinusUS:    core.Some(-0.1),
		})
	}
	spreads[17].HoustonMinusTexas = core.Null

	fit := FitSpreadTrend(spreads, SpreadHoustonTexas, 12)
	require.True(t, fit.OK)
	assert.Equal(t, start.AddMonths(6), fit.From)
	assert.Equal(t, start.AddMonths(17), fit.To)
	assert.Equal(t, 11, fit.Points)
	assert.InDelta(t, 0.02, fit.Slope, 1e-9)
	assert.InDelta(t, 0.5+0.02*6, fit.Intercept, 1e-9)

	flat := FitSpreadTrend(spreads, SpreadHoustonUS, 12)
	require.True(t, flat.OK)
	assert.InDelta(t, 0, flat.Slope, 1e-12)
	assert.InDelta(t, -0.1, flat.Intercept, 1e-9)
}

func TestFitSpreadTrend_TooFewPoints(t *testing.T) {
	spreads := []core.SpreadRecord{
		{Date: month(2023, time.January), HoustonMinusTexas: core.Null},
		{Date: month(2023, time.February), HoustonMinusTexas: core.Some(0.2)},
	}
	fit := FitSpreadTrend(spreads, SpreadHoustonTexas, 12)
	assert.False(t, fit.OK)
	assert.Equal(t, 1, fit.Points)

	assert.False(t, FitSpreadTrend(nil, SpreadHoustonTexas, 12).OK)
}
