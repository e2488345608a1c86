package pipeline

import (
	"sort"
	"time"

	"fuelboard/internal/core"
)

// Seasonal pivots the Houston price into a month by year matrix. Cells with
// no observation are absent; several observations in one cell are averaged.
func Seasonal(asc OrderedSeries) core.SeasonalMatrix {
	buckets := map[core.SeasonalKey][]core.Price{}
	for _, r := range asc.records {
		k := core.SeasonalKey{Month: r.Date.Month, Year: r.Date.Year}
		buckets[k] = append(buckets[k], r.Houston)
	}
	cells := make(map[core.SeasonalKey]core.Price, len(buckets))
	for k, ps := range buckets {
		cells[k] = core.Mean(ps)
	}
	return core.NewSeasonalMatrix(cells)
}

// Yearly returns per-year means of each series in ascending year order.
// Nulls are excluded; a year with no value for a series gets a null mean.
func Yearly(asc OrderedSeries) []core.YearlyAverage {
	type acc struct{ h, t, n []core.Price }
	byYear := map[int]*acc{}
	for _, r := range asc.records {
		a, ok := byYear[r.Date.Year]
		if !ok {
			a = &acc{}
			byYear[r.Date.Year] = a
		}
		a.h = append(a.h, r.Houston)
		a.t = append(a.t, r.Texas)
		a.n = append(a.n, r.National)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]core.YearlyAverage, 0, len(years))
	for _, y := range years {
		a := byYear[y]
		out = append(out, core.YearlyAverage{
			Year:     y,
			Houston:  core.Mean(a.h),
			Texas:    core.Mean(a.t),
			National: core.Mean(a.n),
		})
	}
	return out
}

// MonthlyProfile averages the Houston price per calendar month across all
// years. All twelve months are returned; months never observed are null.
func MonthlyProfile(asc OrderedSeries) []core.MonthProfile {
	var buckets [12][]core.Price
	for _, r := range asc.records {
		buckets[r.Date.Month-1] = append(buckets[r.Date.Month-1], r.Houston)
	}
	out := make([]core.MonthProfile, 12)
	for i := range buckets {
		m := time.Month(i + 1)
		out[i] = core.MonthProfile{
			Month:   int(m),
			Label:   core.MonthLabel(int(m)),
			Houston: core.Mean(buckets[i]),
		}
	}
	return out
}

// LongSeries melts the three price series into one row per observation for
// multi-line charts. Null prices are omitted.
func LongSeries(asc OrderedSeries) []core.SeriesPoint {
	out := make([]core.SeriesPoint, 0, asc.Len()*3)
	for _, series := range []struct {
		name string
		get  func(core.PriceRecord) core.Price
	}{
		{core.SeriesHouston, func(r core.PriceRecord) core.Price { return r.Houston }},
		{core.SeriesTexas, func(r core.PriceRecord) core.Price { return r.Texas }},
		{core.SeriesNational, func(r core.PriceRecord) core.Price { return r.National }},
	} {
		for _, r := range asc.records {
			if p := series.get(r); p.Valid {
				out = append(out, core.SeriesPoint{Date: r.Date, Series: series.name, Price: p.Value})
			}
		}
	}
	return out
}
