package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fuelboard/internal/log"
	"fuelboard/internal/services"
	"fuelboard/internal/source"
)

// Reloader runs a full dataset load.
type Reloader interface {
	Reload(ctx context.Context, trigger string) (*services.LoadState, error)
}

// PollerConfig holds configuration for the version poller
type PollerConfig struct {
	// Interval is how often the source version is checked
	Interval time.Duration

	// Logger defaults to a worker-component logger on stdout.
	Logger *log.Logger
}

// Poller reloads the dataset whenever the source's version marker changes.
type Poller struct {
	source   source.Versioned
	reloader Reloader
	config   PollerConfig
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	last    string
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewPoller(src source.Versioned, reloader Reloader, config PollerConfig) *Poller {
	logger := config.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Poller{
		source:   src,
		reloader: reloader,
		config:   config,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Start records the current version and begins polling. Returns an error if
// already running or the interval is not positive.
func (p *Poller) Start(ctx context.Context) error {
	if p.config.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", p.config.Interval)
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stop, done := p.stopCh, p.doneCh
	p.mu.Unlock()

	if v, err := p.source.Version(ctx); err != nil {
		p.logger.WarnContext(ctx, "Failed to read initial source version", "error", err)
	} else {
		p.setLast(v)
	}

	go p.runLoop(ctx, stop, done)

	p.logger.InfoContext(ctx, "Source poller started", "interval", p.config.Interval)
	return nil
}

// Stop stops polling and waits for an in-flight check to finish. Only the
// first of concurrent calls closes the loop; the others return at once.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()

	select {
	case <-done:
		p.logger.InfoContext(ctx, "Source poller stopped")
		return nil
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Source poller stop timed out")
		return ctx.Err()
	}
}

func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) runLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check compares the source version with the last one seen and reloads on
// change. It reports whether a reload ran.
func (p *Poller) Check(ctx context.Context) bool {
	v, err := p.source.Version(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to read source version", "error", err)
		return false
	}

	p.mu.Lock()
	changed := v != p.last
	p.mu.Unlock()
	if !changed {
		return false
	}

	p.logger.InfoContext(ctx, "Source changed, reloading", "version", v)
	// A failed load is recorded by the reloader; the version still counts as
	// seen so a broken file is not reloaded on every tick.
	_, _ = p.reloader.Reload(ctx, services.TriggerPoll)
	p.setLast(v)
	return true
}

func (p *Poller) setLast(v string) {
	p.mu.Lock()
	p.last = v
	p.mu.Unlock()
}
