package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "eventscout/pkg/errors"
)

// EventRepository handles database operations for events
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert stores one event. A dedup-key collision surfaces as a conflict
// error; the unique index is the authoritative duplicate signal.
func (r *EventRepository) Insert(ctx context.Context, e Event) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Categories == nil {
		e.Categories = []string{}
	}
	categories, err := json.Marshal(e.Categories)
	if err != nil {
		return "", fmt.Errorf("failed to encode categories: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO events (
			id, title, description, cover_image_url, event_url,
			source, external_id, source_url, start_at, end_at,
			venue_id, organizer_id, venue_name, address, city, state,
			categories, visibility, event_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''),
			NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Title, e.Description, e.CoverImageURL, e.EventURL,
		e.Source, e.ExternalID, e.SourceURL, e.StartAt, e.EndAt,
		e.VenueID, e.OrganizerID, e.VenueName, e.Address, e.City, e.State,
		string(categories), e.Visibility, e.EventStatus)

	if err != nil {
		if isUniqueViolation(err) {
			return "", pkgerrors.NewConflict("events",
				fmt.Sprintf("event %q already imported", e.Title))
		}
		return "", fmt.Errorf("failed to insert event: %w", err)
	}

	return e.ID, nil
}

// ExistingKeys returns which of the given dedup keys already exist, in a
// single query.
func (r *EventRepository) ExistingKeys(ctx context.Context, keys []DedupKey) (map[DedupKey]bool, error) {
	existing := make(map[DedupKey]bool)
	if len(keys) == 0 {
		return existing, nil
	}

	conditions := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys)*2)
	for _, key := range keys {
		conditions = append(conditions, "(source_url = ? AND external_id = ?)")
		args = append(args, key.SourceURL, key.ExternalID)
	}

	query := "SELECT source_url, external_id FROM events WHERE " + strings.Join(conditions, " OR ")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up dedup keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key DedupKey
		if err := rows.Scan(&key.SourceURL, &key.ExternalID); err != nil {
			return nil, fmt.Errorf("failed to scan dedup key: %w", err)
		}
		existing[key] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dedup keys: %w", err)
	}

	return existing, nil
}

// ListEvents returns events ordered by start time
func (r *EventRepository) ListEvents(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, cover_image_url, event_url,
		       source, external_id, source_url, start_at, COALESCE(end_at, ''),
		       COALESCE(venue_id, ''), COALESCE(organizer_id, ''),
		       venue_name, address, city, state,
		       categories, visibility, event_status, created_at
		FROM events
		ORDER BY start_at
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var categories string
		err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.CoverImageURL, &e.EventURL,
			&e.Source, &e.ExternalID, &e.SourceURL, &e.StartAt, &e.EndAt,
			&e.VenueID, &e.OrganizerID,
			&e.VenueName, &e.Address, &e.City, &e.State,
			&categories, &e.Visibility, &e.EventStatus, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		if err := json.Unmarshal([]byte(categories), &e.Categories); err != nil {
			e.Categories = []string{}
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// CountEvents returns the total number of persisted events
func (r *EventRepository) CountEvents(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint error
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
