package pipeline

import (
	"gonum.org/v1/gonum/stat"

	"fuelboard/internal/core"
)

const (
	SpreadHoustonTexas = "houston_minus_texas"
	SpreadHoustonUS    = "houston_minus_us"
)

// SpreadTrends fits both spread series over the trailing window.
func SpreadTrends(spreads []core.SpreadRecord, window int) []core.TrendFit {
	return []core.TrendFit{
		FitSpreadTrend(spreads, SpreadHoustonTexas, window),
		FitSpreadTrend(spreads, SpreadHoustonUS, window),
	}
}

// FitSpreadTrend fits an ordinary least squares line to one spread series over
// the last window calendar months. x is the month offset from the window
// start, so the slope is in dollars per month. Null spreads are skipped; with
// fewer than two points the fit is not OK.
func FitSpreadTrend(spreads []core.SpreadRecord, series string, window int) core.TrendFit {
	fit := core.TrendFit{Series: series}
	if len(spreads) == 0 || window <= 0 {
		return fit
	}

	last := spreads[len(spreads)-1].Date
	start := last.AddMonths(-(window - 1))
	fit.From, fit.To = start, last

	var xs, ys []float64
	for _, s := range spreads {
		if s.Date.Before(start) {
			continue
		}
		v := s.HoustonMinusTexas
		if series == SpreadHoustonUS {
			v = s.HoustonMinusUS
		}
		if !v.Valid {
			continue
		}
		xs = append(xs, float64(s.Date.Index()-start.Index()))
		ys = append(ys, v.Value)
	}

	fit.Points = len(xs)
	if fit.Points < 2 {
		return fit
	}
	fit.Intercept, fit.Slope = stat.LinearRegression(xs, ys, nil, false)
	fit.OK = true
	return fit
}
