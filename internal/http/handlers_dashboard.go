package http

import (
	"errors"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"fuelboard/internal/core"
	"fuelboard/internal/log"
	"fuelboard/internal/pipeline"
)

var templateFuncs = template.FuncMap{
	"price":  formatPrice,
	"spread": formatSpread,
	"pct":    formatPct,
	"heat":   heatLevel,
}

// formatPrice renders dollars per gallon, or an em dash for missing values.
func formatPrice(p core.Price) string {
	if !p.Valid {
		return "—"
	}
	return "$" + strconv.FormatFloat(p.Value, 'f', 3, 64)
}

func formatSpread(p core.Price) string {
	if !p.Valid {
		return "—"
	}
	s := strconv.FormatFloat(p.Value, 'f', 3, 64)
	if p.Value > 0 {
		s = "+" + s
	}
	return s
}

// formatPct renders a fractional change as a percentage.
func formatPct(p core.Price) string {
	if !p.Valid {
		return "—"
	}
	return strconv.FormatFloat(p.Value*100, 'f', 1, 64) + "%"
}

// heatLevel buckets p into 0..4 between lo and hi for heatmap shading; -1
// for missing cells.
func heatLevel(p core.Price, lo, hi float64) int {
	if !p.Valid {
		return -1
	}
	if hi <= lo {
		return 2
	}
	return int(math.Min(4, math.Floor((p.Value-lo)/(hi-lo)*5)))
}

type dashboardData struct {
	Err      *ErrorBody
	Meta     DatasetMeta
	Latest   core.Latest
	Range    YearRange
	Years    []int
	Yearly   []core.YearlyAverage
	Seasonal seasonalView
	Profile  []core.MonthProfile
	Fits     []core.TrendFit
	Recent   []core.ChangeRecord
}

type seasonalView struct {
	Years  []int
	Rows   []core.SeasonalRow
	Lo, Hi float64
}

func newSeasonalView(m core.SeasonalMatrix) seasonalView {
	v := seasonalView{Years: m.Years(), Rows: m.Rows(), Lo: math.Inf(1), Hi: math.Inf(-1)}
	for _, row := range v.Rows {
		for _, p := range row.Values {
			if p.Valid {
				v.Lo = math.Min(v.Lo, p.Value)
				v.Hi = math.Max(v.Hi, p.Value)
			}
		}
	}
	return v
}

// recentChanges returns the last n change records, newest first.
func recentChanges(changes []core.ChangeRecord, n int) []core.ChangeRecord {
	out := make([]core.ChangeRecord, 0, n)
	for i := len(changes) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, changes[i])
	}
	return out
}

// handleDashboard renders the page. A failed load renders the failure state
// with 503 and no charts.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	var data dashboardData

	d, err := s.dash.Current()
	if err == nil {
		first, last := d.Years()
		for y := first; y <= last; y++ {
			data.Years = append(data.Years, y)
		}
		data.Range, err = ParseYearRange(r.URL.Query(), first, last)
		if err != nil {
			status = http.StatusBadRequest
		} else {
			var derived pipeline.Derived
			d, derived, err = s.dash.Range(r.Context(), data.Range.From, data.Range.To)
			if err == nil {
				data.Meta = metaOf(d)
				data.Latest = d.Latest
				data.Yearly = derived.Yearly
				data.Seasonal = newSeasonalView(derived.Seasonal)
				data.Profile = derived.Profile
				data.Fits = derived.SpreadFits
				data.Recent = recentChanges(derived.Changes, 12)
			} else if errors.Is(err, pipeline.ErrInvalidRange) {
				status = http.StatusBadRequest
			}
		}
	}
	if err != nil {
		body := NewErrorBody(err)
		if status == http.StatusOK {
			status = http.StatusServiceUnavailable
		} else {
			body.Kind = "bad_request"
		}
		data.Err = &body
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard template execution failed",
			log.FieldError, err, "template", "dashboard.html")
	}
}
