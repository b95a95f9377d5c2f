package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// ScraperConfigRepository handles database operations for scraper configs
type ScraperConfigRepository struct {
	db *sql.DB
}

// NewScraperConfigRepository creates a new scraper config repository
func NewScraperConfigRepository(db *sql.DB) *ScraperConfigRepository {
	return &ScraperConfigRepository{db: db}
}

// CreateScraperConfig stores a scraper config and returns its id
func (r *ScraperConfigRepository) CreateScraperConfig(ctx context.Context, sc ScraperConfig) (string, error) {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scraper_configs (id, place_id, scraper, search_string)
		VALUES (?, ?, ?, ?)
	`, sc.ID, sc.PlaceID, sc.Scraper, sc.SearchString)
	if err != nil {
		return "", fmt.Errorf("failed to insert scraper config: %w", err)
	}
	return sc.ID, nil
}

// GetScraperConfig returns a scraper config by id, or nil when missing
func (r *ScraperConfigRepository) GetScraperConfig(ctx context.Context, id string) (*ScraperConfig, error) {
	var sc ScraperConfig
	err := r.db.QueryRowContext(ctx, `
		SELECT id, place_id, scraper, search_string, created_at
		FROM scraper_configs WHERE id = ?
	`, id).Scan(&sc.ID, &sc.PlaceID, &sc.Scraper, &sc.SearchString, &sc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scraper config: %w", err)
	}
	return &sc, nil
}

// ListScraperConfigs returns all configured scrapers
func (r *ScraperConfigRepository) ListScraperConfigs(ctx context.Context) ([]ScraperConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, place_id, scraper, search_string, created_at
		FROM scraper_configs
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scraper configs: %w", err)
	}
	defer rows.Close()

	var configs []ScraperConfig
	for rows.Next() {
		var sc ScraperConfig
		if err := rows.Scan(&sc.ID, &sc.PlaceID, &sc.Scraper, &sc.SearchString, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scraper config: %w", err)
		}
		configs = append(configs, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scraper configs: %w", err)
	}

	return configs, nil
}
