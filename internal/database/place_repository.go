package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PlaceRepository handles database operations for places
type PlaceRepository struct {
	db *sql.DB
}

// NewPlaceRepository creates a new place repository
func NewPlaceRepository(db *sql.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

// CreatePlace stores a venue or organizer and returns its id
func (r *PlaceRepository) CreatePlace(ctx context.Context, p Place) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO places (id, name, kind, address, city, state)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Kind, p.Address, p.City, p.State)
	if err != nil {
		return "", fmt.Errorf("failed to insert place: %w", err)
	}
	return p.ID, nil
}

// GetPlace returns a place by id, or nil when it does not exist
func (r *PlaceRepository) GetPlace(ctx context.Context, id string) (*Place, error) {
	var p Place
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, kind, address, city, state, created_at
		FROM places WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Kind, &p.Address, &p.City, &p.State, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	return &p, nil
}

// CountPlaces returns the total number of places
func (r *PlaceRepository) CountPlaces(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM places").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return count, nil
}
