package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"fuelboard/internal/cache"
	"fuelboard/internal/core"
	"fuelboard/internal/log"
	"fuelboard/internal/observability"
	"fuelboard/internal/pipeline"
	"fuelboard/internal/source"
)

// ErrNotLoaded is returned before the first load has completed.
var ErrNotLoaded = errors.New("dataset not loaded")

// Reload triggers.
const (
	TriggerStartup = "startup"
	TriggerManual  = "manual"
	TriggerPoll    = "poll"
	TriggerMessage = "message"
)

// LoadState is the outcome of the most recent load. Exactly one of Dataset
// and Err is set.
type LoadState struct {
	Dataset  *pipeline.Dataset
	Err      error
	Trigger  string
	LoadedAt time.Time
	Took     time.Duration
}

// DashboardService owns the current load result. A failed load replaces the
// previous dataset so the dashboard never serves stale charts.
type DashboardService struct {
	source  source.RowSource
	opts    pipeline.Options
	logger  *log.StructuredLogger
	metrics *observability.Metrics
	ranges  *cache.LRUCache[pipeline.Derived]

	group singleflight.Group
	state atomic.Pointer[LoadState]
}

// DashboardConfig configures a DashboardService.
type DashboardConfig struct {
	Options   pipeline.Options
	CacheSize int
	CacheTTL  time.Duration
}

func NewDashboardService(src source.RowSource, cfg DashboardConfig, logger *log.Logger, metrics *observability.Metrics) *DashboardService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 64
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &DashboardService{
		source:  src,
		opts:    cfg.Options,
		logger:  log.NewStructuredLogger(logger),
		metrics: metrics,
		ranges:  cache.NewLRUCache[pipeline.Derived](cfg.CacheSize, cfg.CacheTTL),
	}
}

// Reload reads the source and runs the pipeline. Concurrent callers share a
// single load and all observe its result.
func (s *DashboardService) Reload(ctx context.Context, trigger string) (*LoadState, error) {
	if s.metrics != nil {
		s.metrics.RecordReloadRequest(trigger)
	}
	v, err, _ := s.group.Do("reload", func() (any, error) {
		// Detached so one caller's cancellation does not fail the shared load.
		return s.load(context.WithoutCancel(ctx), trigger), nil
	})
	if err != nil {
		return nil, err
	}
	st := v.(*LoadState)
	return st, st.Err
}

func (s *DashboardService) load(ctx context.Context, trigger string) *LoadState {
	start := time.Now()
	st := &LoadState{Trigger: trigger}

	t, err := s.source.ReadRows(ctx)
	if err == nil {
		st.Dataset, err = pipeline.Run(ctx, t, s.opts)
	} else {
		err = fmt.Errorf("read source: %w", err)
	}
	st.Err = err
	st.Took = time.Since(start)
	st.LoadedAt = time.Now().UTC()

	if err != nil {
		kind := core.ErrorKind(err)
		s.logger.LogLoadFailed(ctx, t.Source, trigger, kind, err, st.Took)
		if s.metrics != nil {
			s.metrics.RecordLoadFailed(st.Took, kind)
		}
	} else {
		d := st.Dataset
		s.logger.LogDatasetLoaded(ctx, d.ID.String(), d.Source, trigger,
			d.RowsRead, d.Dropped, d.InvalidCells, d.Ascending.Len(), st.Took)
		if s.metrics != nil {
			s.metrics.RecordLoadSucceeded(st.Took, d.RowsRead, d.Dropped, d.InvalidCells, d.Ascending.Len())
		}
	}

	s.state.Store(st)
	s.ranges.Purge()
	return st
}

// State returns the latest load outcome, nil before the first load.
func (s *DashboardService) State() *LoadState {
	return s.state.Load()
}

// Current returns the loaded dataset or the error of the last load.
func (s *DashboardService) Current() (*pipeline.Dataset, error) {
	st := s.state.Load()
	if st == nil {
		return nil, ErrNotLoaded
	}
	if st.Err != nil {
		return nil, st.Err
	}
	return st.Dataset, nil
}

// Range returns the derived sets for the inclusive year range, cached per
// dataset and range.
func (s *DashboardService) Range(ctx context.Context, from, to int) (*pipeline.Dataset, pipeline.Derived, error) {
	d, err := s.Current()
	if err != nil {
		return nil, pipeline.Derived{}, err
	}

	key := fmt.Sprintf("%s:%d-%d", d.ID, from, to)
	if derived, ok := s.ranges.Get(key); ok {
		s.recordCache(true)
		return d, derived, nil
	}
	s.recordCache(false)

	derived, err := d.Between(ctx, from, to)
	if err != nil {
		return nil, pipeline.Derived{}, err
	}
	s.ranges.Set(key, derived)
	return d, derived, nil
}

// Cache exposes the range cache so callers can register it for expiry sweeps.
func (s *DashboardService) Cache() *cache.LRUCache[pipeline.Derived] {
	return s.ranges
}

func (s *DashboardService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}
