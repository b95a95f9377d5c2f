package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Database configuration
	DBPath string

	// Redis configuration (imported-event stream)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration (scrape rate-limit cache)
	MemcacheAddr string

	// HTTP server
	Port     string
	AdminKey string

	// Scraper configuration
	ScrapeTimeout time.Duration
	MaxPages      int
	Timezone      string

	// Ticketmaster search API
	TicketmasterAPIURL string
	TicketmasterAPIKey string

	// Background worker; 0 disables periodic scraping
	WorkerInterval time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	scrapeTimeout, _ := strconv.Atoi(getEnv("SCRAPE_TIMEOUT_SECONDS", "10"))
	maxPages, _ := strconv.Atoi(getEnv("SCRAPE_MAX_PAGES", "3"))
	workerInterval, _ := strconv.Atoi(getEnv("WORKER_INTERVAL_SECONDS", "0"))

	return Config{
		DBPath:               getEnv("DB_PATH", "eventscout.db"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "imported-events"),
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		Port:                 getEnv("PORT", "8080"),
		AdminKey:             getEnv("ADMIN_KEY", ""),
		ScrapeTimeout:        time.Duration(scrapeTimeout) * time.Second,
		MaxPages:             maxPages,
		Timezone:             getEnv("SCRAPE_TIMEZONE", "America/New_York"),
		TicketmasterAPIURL:   getEnv("TICKETMASTER_API_URL", "https://app.ticketmaster.com/discovery/v2"),
		TicketmasterAPIKey:   getEnv("TICKETMASTER_API_KEY", ""),
		WorkerInterval:       time.Duration(workerInterval) * time.Second,
		Environment:          getEnv("EVENTSCOUT_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for invalid values
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("SCRAPE_MAX_PAGES must be at least 1, got %d", c.MaxPages)
	}
	if c.ScrapeTimeout <= 0 {
		return fmt.Errorf("SCRAPE_TIMEOUT_SECONDS must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid SCRAPE_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the timezone used to interpret scraped date text
// that carries no offset of its own.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
