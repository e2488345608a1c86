// Package http serves the fuel price dashboard, its JSON API and downloads.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fuelboard/internal/log"
	"fuelboard/internal/middleware/ratelimit"
	"fuelboard/internal/middleware/security"
	"fuelboard/internal/middleware/trace"
	"fuelboard/internal/observability"
	"fuelboard/internal/pipeline"
	"fuelboard/internal/services"
	appweb "fuelboard/web"
)

// Dashboard is the dataset state the server renders.
type Dashboard interface {
	Current() (*pipeline.Dataset, error)
	State() *services.LoadState
	Range(ctx context.Context, from, to int) (*pipeline.Dataset, pipeline.Derived, error)
	Reload(ctx context.Context, trigger string) (*services.LoadState, error)
}

// Config holds server wiring. Metrics and Gatherer are optional.
type Config struct {
	Addr string

	// ReloadPerMinute caps POST /reload per client.
	ReloadPerMinute int

	Logger   *log.Logger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
}

type Server struct {
	http.Server
	dash      Dashboard
	templates *template.Template
	logger    *log.Logger
	metrics   *observability.Metrics
	limiter   *ratelimit.Limiter
	clientIP  *security.ClientIPResolver
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(cfg Config, dash Dashboard) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.DefaultConfig())
	}
	if cfg.ReloadPerMinute <= 0 {
		cfg.ReloadPerMinute = 6
	}

	mux := http.NewServeMux()
	s := &Server{
		dash:     dash,
		logger:   cfg.Logger.WithComponent(log.ComponentHTTP),
		metrics:  cfg.Metrics,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{Requests: cfg.ReloadPerMinute, Window: time.Minute}),
		clientIP: security.NewClientIPResolver(),
		started:  time.Now(),
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	s.route(mux, "GET /{$}", s.handleDashboard)

	s.route(mux, "GET /api/summary", s.handleSummary)
	s.route(mux, "GET /api/trend", s.handleTrend)
	s.route(mux, "GET /api/spreads", s.handleSpreads)
	s.route(mux, "GET /api/changes", s.handleChanges)
	s.route(mux, "GET /api/seasonal", s.handleSeasonal)
	s.route(mux, "GET /api/yearly", s.handleYearly)
	s.route(mux, "GET /api/seasonality", s.handleSeasonality)
	s.route(mux, "GET /api/spread-trend", s.handleSpreadTrend)
	s.route(mux, "GET /api/dataset", s.handleDataset)

	s.route(mux, "GET /download/full.csv", noStore(s.handleDownloadCSV(false)))
	s.route(mux, "GET /download/filtered.csv", noStore(s.handleDownloadCSV(true)))
	s.route(mux, "GET /download/full.xlsx", noStore(s.handleDownloadXLSX(false)))
	s.route(mux, "GET /download/filtered.xlsx", noStore(s.handleDownloadXLSX(true)))

	reload := s.limiter.Middleware(s.clientIP.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		_ = TooManyRequestsError().Write(w)
	})(http.HandlerFunc(s.handleReload))
	s.route(mux, "POST /reload", reload.ServeHTTP)

	s.route(mux, "GET /healthz", s.handleHealth)
	s.route(mux, "GET /readyz", s.handleReady)
	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", observability.HandlerFor(cfg.Gatherer))
	}

	var handler http.Handler = mux
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = trace.NewMiddleware(s.logger, s.clientIP.ClientIP).Handler(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// route registers h under pattern and records per-route metrics.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			h(w, r)
			return
		}
		start := time.Now()
		rw := &trace.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		h(rw, r)
		s.metrics.RecordHTTP(pattern, rw.Status, time.Since(start))
	})
}

func noStore(h http.HandlerFunc) http.HandlerFunc {
	return security.NoStore(h).ServeHTTP
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
