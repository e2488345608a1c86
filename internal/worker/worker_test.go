package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelboard/internal/amqp"
	"fuelboard/internal/core"
	"fuelboard/internal/services"
	"fuelboard/internal/source/memory"
)

type fakeReloader struct {
	mu       sync.Mutex
	triggers []string
	err      error
}

func (f *fakeReloader) Reload(_ context.Context, trigger string) (*services.LoadState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger)
	return &services.LoadState{Trigger: trigger, Err: f.err}, f.err
}

func (f *fakeReloader) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.triggers...)
}

var header = []string{"date", "gasoline_price", "texas_avg", "national_avg"}

func TestPoller_CheckReloadsOnlyOnChange(t *testing.T) {
	store := memory.New(header, []string{"2023-01-01", "3.00", "3.10", "3.20"})
	rl := &fakeReloader{}
	p := NewPoller(store, rl, PollerConfig{Interval: time.Hour})

	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { p.Stop(context.Background()) })

	assert.False(t, p.Check(context.Background()))
	assert.Empty(t, rl.calls())

	store.Set(core.Table{Header: header, Rows: [][]string{{"2023-02-01", "3.30", "3.15", "3.25"}}})
	assert.True(t, p.Check(context.Background()))
	assert.Equal(t, []string{services.TriggerPoll}, rl.calls())

	assert.False(t, p.Check(context.Background()))
}

func TestPoller_FailedReloadIsNotRetriedEveryTick(t *testing.T) {
	store := memory.New(header)
	rl := &fakeReloader{err: &core.EmptyDatasetError{}}
	p := NewPoller(store, rl, PollerConfig{Interval: time.Hour})
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { p.Stop(context.Background()) })

	store.Set(core.Table{Header: header})
	assert.True(t, p.Check(context.Background()))
	assert.False(t, p.Check(context.Background()))
	assert.Len(t, rl.calls(), 1)
}

func TestPoller_Lifecycle(t *testing.T) {
	store := memory.New(header)
	p := NewPoller(store, &fakeReloader{}, PollerConfig{Interval: 10 * time.Millisecond})

	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.IsRunning())
	assert.Error(t, p.Start(context.Background()), "second start")

	require.NoError(t, p.Stop(context.Background()))
	assert.False(t, p.IsRunning())
	assert.NoError(t, p.Stop(context.Background()))
}

func TestPoller_ConcurrentStop(t *testing.T) {
	p := NewPoller(memory.New(header), &fakeReloader{}, PollerConfig{Interval: 10 * time.Millisecond})
	require.NoError(t, p.Start(context.Background()))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- p.Stop(context.Background())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.False(t, p.IsRunning())

	// A stopped poller can be started again.
	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Stop(context.Background()))
}

func TestPoller_RejectsNonPositiveInterval(t *testing.T) {
	p := NewPoller(memory.New(header), &fakeReloader{}, PollerConfig{})
	assert.Error(t, p.Start(context.Background()))
	assert.False(t, p.IsRunning())
}

func TestPoller_TickerTriggersReload(t *testing.T) {
	store := memory.New(header)
	rl := &fakeReloader{}
	p := NewPoller(store, rl, PollerConfig{Interval: 5 * time.Millisecond})
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { p.Stop(context.Background()) })

	store.Set(core.Table{Header: header, Rows: [][]string{{"2023-02-01", "3.30", "3.15", "3.25"}}})
	assert.Eventually(t, func() bool { return len(rl.calls()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestReloadWorker_HandleReloadMessage(t *testing.T) {
	msg := amqp.NewDatasetReloadMessage("import", "run-1")

	t.Run("success", func(t *testing.T) {
		rl := &fakeReloader{}
		err := NewReloadWorker(rl, nil).HandleReloadMessage(context.Background(), msg)
		require.NoError(t, err)
		assert.Equal(t, []string{services.TriggerMessage}, rl.calls())
	})

	t.Run("validation error is acknowledged", func(t *testing.T) {
		rl := &fakeReloader{err: &core.SchemaError{Columns: []string{"date"}}}
		assert.NoError(t, NewReloadWorker(rl, nil).HandleReloadMessage(context.Background(), msg))
	})

	t.Run("source error is retried", func(t *testing.T) {
		rl := &fakeReloader{err: errors.New("read source: timeout")}
		err := NewReloadWorker(rl, nil).HandleReloadMessage(context.Background(), msg)
		assert.Error(t, err)
	})
}

type fakeConsumer struct {
	msgs []*amqp.DatasetReloadMessage
	errs []error
}

func (f *fakeConsumer) ConsumeReload(ctx context.Context, handler amqp.ReloadHandler) error {
	for _, m := range f.msgs {
		f.errs = append(f.errs, handler(ctx, m))
	}
	return ctx.Err()
}

func TestReloadWorker_Run(t *testing.T) {
	rl := &fakeReloader{}
	c := &fakeConsumer{msgs: []*amqp.DatasetReloadMessage{
		amqp.NewDatasetReloadMessage("a", ""),
		amqp.NewDatasetReloadMessage("b", ""),
	}}

	require.NoError(t, NewReloadWorker(rl, nil).Run(context.Background(), c))
	assert.Len(t, rl.calls(), 2)
	assert.Equal(t, []error{nil, nil}, c.errs)
}
