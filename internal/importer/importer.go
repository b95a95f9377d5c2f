package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eventscout/internal/database"
	"eventscout/internal/scraper"
	"eventscout/logger"
	pkgerrors "eventscout/pkg/errors"
	"eventscout/services/publisher"
)

// IncomingEvent is a normalized event payload submitted for import,
// optionally carrying a per-event venue override.
type IncomingEvent struct {
	scraper.Event
	VenueID string `json:"venueId,omitempty"`
}

// Request is the input to BatchCreateEvents. VenueID and OrganizerID
// attach to every event in the batch unless an event overrides the venue.
type Request struct {
	VenueID     string          `json:"venueId,omitempty"`
	OrganizerID string          `json:"organizerId,omitempty"`
	SourceURL   string          `json:"sourceUrl,omitempty"`
	Events      []IncomingEvent `json:"events"`
}

// Result reports what happened to each event in a batch. Partial success
// is expected and reported, never hidden.
type Result struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Importer is the deduplication and import gate in front of the events
// table.
type Importer struct {
	events *database.EventRepository
	pub    publisher.Publisher
	log    *logger.Logger
}

// New creates an importer. pub may be nil to disable event fanout.
func New(events *database.EventRepository, pub publisher.Publisher) *Importer {
	return &Importer{
		events: events,
		pub:    pub,
		log:    logger.ForComponent("importer"),
	}
}

// BatchCreateEvents imports a batch of normalized events. Events whose
// dedup key already exists are skipped; rows failing validation or insert
// are counted as failed with a descriptive error. One row's failure never
// aborts its siblings. A non-nil error is returned only for structural
// failures (the dedup lookup itself).
func (im *Importer) BatchCreateEvents(ctx context.Context, req Request) (*Result, error) {
	res := &Result{}

	keys := make([]database.DedupKey, 0, len(req.Events))
	for _, e := range req.Events {
		if e.ExternalID != "" {
			keys = append(keys, im.dedupKey(req, e))
		}
	}

	existing, err := im.events.ExistingKeys(ctx, keys)
	if err != nil {
		return nil, err
	}

	for _, e := range req.Events {
		// Events without an external id cannot be deduplicated and are
		// always treated as new.
		if e.ExternalID != "" && existing[im.dedupKey(req, e)] {
			res.Skipped++
			continue
		}

		row, err := im.buildRow(req, e)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, err.Error())
			continue
		}

		if _, err := im.events.Insert(ctx, row); err != nil {
			if pkgerrors.IsType(err, pkgerrors.ErrorTypeConflict) {
				// Lost a race with a concurrent import of the same key;
				// the unique index is the authoritative signal.
				res.Skipped++
				continue
			}
			res.Failed++
			res.Errors = append(res.Errors, err.Error())
			continue
		}

		res.Created++
		im.publish(row)
	}

	im.log.Info().
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("Imported event batch")

	return res, nil
}

// dedupKey computes the (sourceUrl, externalId) pair for an event,
// falling back to the source slug when the batch has no source URL.
func (im *Importer) dedupKey(req Request, e IncomingEvent) database.DedupKey {
	sourceURL := req.SourceURL
	if sourceURL == "" {
		sourceURL = e.Source
	}
	return database.DedupKey{SourceURL: sourceURL, ExternalID: e.ExternalID}
}

// buildRow validates an incoming event and maps it onto a database row
func (im *Importer) buildRow(req Request, e IncomingEvent) (database.Event, error) {
	if e.Title == "" {
		return database.Event{}, pkgerrors.NewValidation("importer", "event has no title")
	}

	start, err := time.Parse(time.RFC3339, e.StartAt)
	if err != nil {
		return database.Event{}, pkgerrors.NewValidation("importer",
			fmt.Sprintf("event %q has an invalid start date/time", e.Title))
	}

	if e.EndAt != "" {
		end, err := time.Parse(time.RFC3339, e.EndAt)
		if err != nil || !end.After(start) {
			return database.Event{}, pkgerrors.NewValidation("importer",
				fmt.Sprintf("event %q has an invalid end date/time", e.Title))
		}
	}

	venueID := req.VenueID
	if e.VenueID != "" {
		venueID = e.VenueID
	}

	visibility := e.Visibility
	if visibility == "" {
		visibility = scraper.VisibilityPublic
	}
	status := e.EventStatus
	if status == "" {
		status = scraper.StatusScheduled
	}
	categories := e.Categories
	if categories == nil {
		categories = []string{}
	}

	key := im.dedupKey(req, e)

	return database.Event{
		Title:         e.Title,
		Description:   e.Description,
		CoverImageURL: e.CoverImageURL,
		EventURL:      e.EventURL,
		Source:        e.Source,
		ExternalID:    e.ExternalID,
		SourceURL:     key.SourceURL,
		StartAt:       e.StartAt,
		EndAt:         e.EndAt,
		VenueID:       venueID,
		OrganizerID:   req.OrganizerID,
		VenueName:     e.VenueName,
		Address:       e.Address,
		City:          e.City,
		State:         e.State,
		Categories:    categories,
		Visibility:    visibility,
		EventStatus:   status,
	}, nil
}

// publish fans the created event out to downstream consumers. Publish
// failures are logged, never counted against the import.
func (im *Importer) publish(row database.Event) {
	if im.pub == nil {
		return
	}
	data, err := json.Marshal(row)
	if err != nil {
		im.log.Error().Err(err).Str("title", row.Title).Msg("Failed to encode event for publishing")
		return
	}
	if err := im.pub.Publish(row.Source, data); err != nil {
		im.log.Error().Err(err).Str("title", row.Title).Msg("Failed to publish imported event")
	}
}
