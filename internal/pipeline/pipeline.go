// Package pipeline turns a raw price table into the dashboard's derived
// datasets: ordered views, spreads, percent changes, seasonal and yearly
// aggregates.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fuelboard/internal/core"
)

// Derived holds everything computed from one ascending view.
type Derived struct {
	Trend      OrderedSeries        `json:"trend_series"`
	Spreads    []core.SpreadRecord  `json:"spread_series"`
	Changes    []core.ChangeRecord  `json:"change_series"`
	Seasonal   core.SeasonalMatrix  `json:"seasonal_matrix"`
	Yearly     []core.YearlyAverage `json:"yearly_averages"`
	Profile    []core.MonthProfile  `json:"monthly_profile"`
	Long       []core.SeriesPoint   `json:"long_series"`
	SpreadFits []core.TrendFit      `json:"spread_trends"`
}

// Dataset is the immutable result of one load. It replaces any process-wide
// state: callers hold a *Dataset and pass it where needed.
type Dataset struct {
	ID       uuid.UUID `json:"id"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`

	RowsRead     int `json:"rows_read"`
	Dropped      int `json:"rows_dropped"`
	InvalidCells int `json:"invalid_cells"`

	Ascending  OrderedSeries `json:"-"`
	Descending OrderedSeries `json:"-"`
	Latest     core.Latest   `json:"latest"`

	Derived

	opts Options
}

// Run validates a table, builds both views and derives every output set.
// The derived sets are independent and computed concurrently.
func Run(ctx context.Context, t core.Table, opts Options) (*Dataset, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	v, err := Load(t, opts)
	if err != nil {
		return nil, err
	}
	asc, desc, err := BuildViews(v, opts.Duplicates)
	if err != nil {
		return nil, err
	}

	d, err := derive(ctx, asc, opts)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		ID:           uuid.New(),
		Source:       t.Source,
		LoadedAt:     time.Now().UTC(),
		RowsRead:     v.RowsRead,
		Dropped:      v.Dropped,
		InvalidCells: v.InvalidCells,
		Ascending:    asc,
		Descending:   desc,
		Latest:       latestOf(desc),
		Derived:      d,
		opts:         opts,
	}, nil
}

func derive(ctx context.Context, asc OrderedSeries, opts Options) (Derived, error) {
	d := Derived{Trend: asc}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.Spreads = Spreads(asc)
		d.SpreadFits = SpreadTrends(d.Spreads, opts.TrendWindow)
		return ctx.Err()
	})
	g.Go(func() error {
		d.Changes = Changes(asc)
		return ctx.Err()
	})
	g.Go(func() error {
		d.Seasonal = Seasonal(asc)
		d.Profile = MonthlyProfile(asc)
		return ctx.Err()
	})
	g.Go(func() error {
		d.Yearly = Yearly(asc)
		return ctx.Err()
	})
	g.Go(func() error {
		d.Long = LongSeries(asc)
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return Derived{}, fmt.Errorf("derive datasets: %w", err)
	}
	return d, nil
}

// latestOf reads the headline scalars from the first record of a descending
// view.
func latestOf(desc OrderedSeries) core.Latest {
	r, ok := desc.First()
	if !ok {
		return core.Latest{Houston: core.Null, Texas: core.Null, National: core.Null,
			HoustonMinusTexas: core.Null, HoustonMinusUS: core.Null}
	}
	s := spreadOf(r)
	return core.Latest{
		Date:              r.Date,
		Houston:           r.Houston,
		Texas:             r.Texas,
		National:          r.National,
		HoustonMinusTexas: s.HoustonMinusTexas,
		HoustonMinusUS:    s.HoustonMinusUS,
	}
}

// Options returns the options the dataset was built with.
func (d *Dataset) Options() Options { return d.opts }

// Years returns the first and last calendar year covered by the dataset.
func (d *Dataset) Years() (first, last int) {
	if r, ok := d.Ascending.First(); ok {
		first = r.Date.Year
	}
	if r, ok := d.Descending.First(); ok {
		last = r.Date.Year
	}
	return first, last
}
