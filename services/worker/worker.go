package worker

import (
	"context"
	"sync"
	"time"

	"eventscout/internal/database"
	"eventscout/internal/importer"
	"eventscout/internal/scraper"
	"eventscout/logger"
)

// ConfigSource lists the scraper configs to run
type ConfigSource interface {
	ListScraperConfigs(ctx context.Context) ([]database.ScraperConfig, error)
}

// ConfigRunner executes one scraper config end to end
type ConfigRunner interface {
	Run(ctx context.Context, sc database.ScraperConfig) (*scraper.Result, *importer.Result, error)
}

// Worker periodically runs every configured scraper and imports the
// results. The admin API remains the primary driver; the worker just
// keeps configured venues fresh between reviews.
type Worker struct {
	ctx      context.Context
	configs  ConfigSource
	runner   ConfigRunner
	interval time.Duration
	log      *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(ctx context.Context, configs ConfigSource, runner ConfigRunner, interval time.Duration) *Worker {
	return &Worker{
		ctx:      ctx,
		configs:  configs,
		runner:   runner,
		interval: interval,
		log:      logger.ForComponent("worker"),
	}
}

// Start runs the scrape loop until the context is cancelled
func (w *Worker) Start() error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runConfigs()

	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-ticker.C:
			w.runConfigs()
		}
	}
}

// runConfigs runs all configured scrapers in parallel
func (w *Worker) runConfigs() {
	configs, err := w.configs.ListScraperConfigs(w.ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to list scraper configs")
		return
	}
	if len(configs) == 0 {
		return
	}

	start := time.Now()

	var wg sync.WaitGroup
	for _, sc := range configs {
		wg.Add(1)
		go func(sc database.ScraperConfig) {
			defer wg.Done()
			if _, _, err := w.runner.Run(w.ctx, sc); err != nil {
				w.log.Error().Err(err).
					Str("scraper", sc.Scraper).
					Str("config", sc.ID).
					Msg("Scraper config run failed")
			}
		}(sc)
	}
	wg.Wait()

	w.log.Info().
		Int("configs", len(configs)).
		Dur("elapsed", time.Since(start)).
		Msg("Finished scrape cycle")
}
