package http

import (
	"errors"
	"net/http"
	"time"

	"fuelboard/internal/core"
	"fuelboard/internal/log"
	"fuelboard/internal/pipeline"
	"fuelboard/internal/services"
)

// view is the dataset and derived sets for one request's year range.
type view struct {
	dataset *pipeline.Dataset
	derived pipeline.Derived
	years   YearRange
}

// loadView resolves the request's range. On failure it has already written
// the response.
func (s *Server) loadView(w http.ResponseWriter, r *http.Request) (view, bool) {
	d, err := s.dash.Current()
	if err != nil {
		s.writeJSON(w, r, LoadErrorResponse(err))
		return view{}, false
	}

	first, last := d.Years()
	yr, err := ParseYearRange(r.URL.Query(), first, last)
	if err != nil {
		s.writeJSON(w, r, BadRequestError(err.Error()))
		return view{}, false
	}

	d, derived, err := s.dash.Range(r.Context(), yr.From, yr.To)
	switch {
	case errors.Is(err, pipeline.ErrInvalidRange):
		s.writeJSON(w, r, BadRequestError(err.Error()))
		return view{}, false
	case err != nil:
		s.writeJSON(w, r, LoadErrorResponse(err))
		return view{}, false
	}
	return view{dataset: d, derived: derived, years: yr}, true
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, b *JSONResponseBuilder) {
	if err := b.Write(w); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response",
			log.FieldError, err, log.FieldPath, r.URL.Path)
	}
}

func (s *Server) ok(w http.ResponseWriter, r *http.Request, body any) {
	s.writeJSON(w, r, NewJSONResponse().Body(body))
}

// DatasetMeta describes the loaded dataset independently of any range.
type DatasetMeta struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	LoadedAt     time.Time `json:"loaded_at"`
	RowsRead     int       `json:"rows_read"`
	RowsDropped  int       `json:"rows_dropped"`
	InvalidCells int       `json:"invalid_cells"`
	Records      int       `json:"records"`
	FirstYear    int       `json:"first_year"`
	LastYear     int       `json:"last_year"`
}

func metaOf(d *pipeline.Dataset) DatasetMeta {
	first, last := d.Years()
	return DatasetMeta{
		ID:           d.ID.String(),
		Source:       d.Source,
		LoadedAt:     d.LoadedAt,
		RowsRead:     d.RowsRead,
		RowsDropped:  d.Dropped,
		InvalidCells: d.InvalidCells,
		Records:      d.Ascending.Len(),
		FirstYear:    first,
		LastYear:     last,
	}
}

type summaryResponse struct {
	Dataset DatasetMeta `json:"dataset"`
	Range   YearRange   `json:"range"`
	Latest  core.Latest `json:"latest"`
}

// handleSummary returns the headline scalars. They always come from the
// newest record of the whole dataset, whatever the range.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	s.ok(w, r, summaryResponse{Dataset: metaOf(v.dataset), Range: v.years, Latest: v.dataset.Latest})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	s.ok(w, r, struct {
		Range YearRange              `json:"range"`
		Trend pipeline.OrderedSeries `json:"trend_series"`
		Long  []core.SeriesPoint     `json:"long_series"`
	}{v.years, v.derived.Trend, v.derived.Long})
}

func (s *Server) handleSpreads(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	s.ok(w, r, struct {
		Range   YearRange           `json:"range"`
		Spreads []core.SpreadRecord `json:"spread_series"`
	}{v.years, v.derived.Spreads})
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	s.ok(w, r, struct {
		Range   YearRange           `json:"range"`
		Changes []core.ChangeRecord `json:"change_series"`
	}{v.years, v.derived.Changes})
}

func (s *Server) handleSeasonal(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	s.ok(w, r, struct {
		Range    YearRange           `json:"range"`
		Seasonal core.SeasonalMatrix `json:"seasonal_matrix"`
	}{v.years, v.derived.Seasonal})
}

func (s *Server) handleYearly(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	s.ok(w, r, struct {
		Range  YearRange            `json:"range"`
		Yearly []core.YearlyAverage `json:"yearly_averages"`
	}{v.years, v.derived.Yearly})
}

func (s *Server) handleSeasonality(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	s.ok(w, r, struct {
		Range   YearRange           `json:"range"`
		Profile []core.MonthProfile `json:"monthly_profile"`
	}{v.years, v.derived.Profile})
}

// handleSpreadTrend fits the spread series over an optional window, in
// months, defaulting to the configured trend window.
func (s *Server) handleSpreadTrend(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	window, err := ParseWindow(r.URL.Query(), v.dataset.Options().TrendWindow)
	if err != nil {
		s.writeJSON(w, r, BadRequestError(err.Error()))
		return
	}
	fits := v.derived.SpreadFits
	if window != v.dataset.Options().TrendWindow {
		fits = pipeline.SpreadTrends(v.derived.Spreads, window)
	}
	s.ok(w, r, struct {
		Range  YearRange       `json:"range"`
		Window int             `json:"window"`
		Fits   []core.TrendFit `json:"spread_trends"`
	}{v.years, window, fits})
}

// handleDataset returns every derived set for the range in one document.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	s.ok(w, r, struct {
		Dataset DatasetMeta `json:"dataset"`
		Range   YearRange   `json:"range"`
		Latest  core.Latest `json:"latest"`
		pipeline.Derived
	}{metaOf(v.dataset), v.years, v.dataset.Latest, v.derived})
}

type reloadResponse struct {
	Status  string      `json:"status"`
	Trigger string      `json:"trigger"`
	TookMs  int64       `json:"took_ms"`
	Dataset DatasetMeta `json:"dataset"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	st, err := s.dash.Reload(r.Context(), services.TriggerManual)
	if err != nil {
		s.writeJSON(w, r, LoadErrorResponse(err))
		return
	}
	s.ok(w, r, reloadResponse{
		Status:  "reloaded",
		Trigger: st.Trigger,
		TookMs:  st.Took.Milliseconds(),
		Dataset: metaOf(st.Dataset),
	})
}
