package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"eventscout/config"
	"eventscout/helpers"
	"eventscout/internal/api"
	"eventscout/internal/database"
	"eventscout/internal/importer"
	"eventscout/internal/runner"
	"eventscout/internal/scraper"
	"eventscout/logger"
	"eventscout/services/cache"
	"eventscout/services/publisher"
	"eventscout/services/worker"
)

func main() {
	_ = godotenv.Load()

	logger.Init()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Default.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Default.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		logger.Default.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Default.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database migrated")

	events := database.NewEventRepository(db)
	places := database.NewPlaceRepository(db)
	configs := database.NewScraperConfigRepository(db)

	cacheSvc := cache.NewMemcacheService(cfg.MemcacheAddr)
	pub := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
	defer pub.Close()

	deps := scraper.Deps{
		Fetcher:             helpers.NewFetcher(cfg.ScrapeTimeout),
		Cache:               cacheSvc,
		Normalizer:          scraper.NewNormalizer(cfg.Location()),
		MaxPages:            cfg.MaxPages,
		TicketmasterBaseURL: cfg.TicketmasterAPIURL,
		TicketmasterAPIKey:  cfg.TicketmasterAPIKey,
	}

	imp := importer.New(events, pub)
	run := runner.New(places, imp, deps)

	if cfg.WorkerInterval > 0 {
		w := worker.NewWorker(ctx, configs, run, cfg.WorkerInterval)
		go func() {
			if err := w.Start(); err != nil && !errors.Is(err, context.Canceled) {
				logger.Default.Error().Err(err).Msg("Worker stopped")
			}
		}()
		logger.Default.Info().Dur("interval", cfg.WorkerInterval).Msg("Background worker started")
	}

	handler := api.NewHandler(deps, imp, run, events, places, configs)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(handler, cfg.AdminKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		logger.Default.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Default.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Default.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Default.Error().Err(err).Msg("Shutdown error")
	}
}
