package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventscout/internal/database"
	"eventscout/internal/importer"
	"eventscout/internal/scraper"
)

type fakeConfigSource struct {
	configs []database.ScraperConfig
}

func (f *fakeConfigSource) ListScraperConfigs(ctx context.Context) ([]database.ScraperConfig, error) {
	return f.configs, nil
}

type fakeRunner struct {
	mu   sync.Mutex
	runs []string
}

func (f *fakeRunner) Run(ctx context.Context, sc database.ScraperConfig) (*scraper.Result, *importer.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, sc.ID)
	return &scraper.Result{}, &importer.Result{}, nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

func TestWorkerRunsConfigsEachCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &fakeConfigSource{configs: []database.ScraperConfig{
		{ID: "cfg-1", Scraper: "dice"},
		{ID: "cfg-2", Scraper: "posh"},
	}}
	runner := &fakeRunner{}

	w := NewWorker(ctx, source, runner, 50*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	// The first cycle runs immediately; at least one more follows on the tick
	require.Eventually(t, func() bool {
		return runner.count() >= 4
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestWorkerStopsWithoutConfigs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	w := NewWorker(ctx, &fakeConfigSource{}, &fakeRunner{}, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
