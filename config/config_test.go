package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "eventscout.db", cfg.DBPath)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "localhost:11211", cfg.MemcacheAddr)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ScrapeTimeout)
	assert.Equal(t, 3, cfg.MaxPages)
	assert.Equal(t, time.Duration(0), cfg.WorkerInterval)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("SCRAPE_MAX_PAGES", "5")
	t.Setenv("WORKER_INTERVAL_SECONDS", "300")

	cfg := LoadConfig()

	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.MaxPages)
	assert.Equal(t, 5*time.Minute, cfg.WorkerInterval)
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.MaxPages = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Timezone = "Nowhere/Unknown"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.DBPath = ""
	assert.Error(t, bad.Validate())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := Config{Timezone: "Nowhere/Unknown"}
	assert.Equal(t, time.UTC, cfg.Location())
}
