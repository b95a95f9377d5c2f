package scraper

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	pkgerrors "eventscout/pkg/errors"
)

// RawEvent holds the fields a parser extracted before normalization.
// Sources that yield machine timestamps set StartAt/EndAt directly; HTML
// sources set DateText/EndDateText and let the normalizer parse them.
// Likewise LocationText carries a free-text venue/address blob for HTML
// sources, while structured sources fill VenueName/Address/City/State.
type RawEvent struct {
	Title         string
	Description   string
	CoverImageURL string
	EventURL      string
	ExternalID    string

	StartAt     time.Time
	EndAt       time.Time
	DateText    string
	EndDateText string

	LocationText string
	VenueName    string
	Address      string
	City         string
	State        string

	Cancelled bool
	Source    string
}

// Normalizer maps raw parser output into well-formed Events
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a normalizer that interprets offset-less date text
// in the given location.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Normalize produces a well-formed Event or an error describing why the
// raw record had to be dropped. A garbage date is never propagated; the
// event is rejected instead.
func (n *Normalizer) Normalize(raw RawEvent) (Event, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return Event{}, pkgerrors.NewValidation(raw.Source, "event has no title")
	}

	startAt, err := n.parseTime(raw.StartAt, raw.DateText)
	if err != nil {
		return Event{}, pkgerrors.NewValidation(raw.Source,
			fmt.Sprintf("event %q has an unparseable date %q", title, raw.DateText))
	}

	endAt := ""
	if end, err := n.parseTime(raw.EndAt, raw.EndDateText); err == nil {
		endAt = end
	}

	venueName, address, city, state := raw.VenueName, raw.Address, raw.City, raw.State
	if venueName == "" && raw.LocationText != "" {
		venueName, address, city, state = SplitLocation(raw.LocationText)
	}

	status := StatusScheduled
	if raw.Cancelled {
		status = StatusCancelled
	}

	return Event{
		Title:         title,
		Description:   strings.TrimSpace(raw.Description),
		CoverImageURL: strings.TrimSpace(raw.CoverImageURL),
		EventURL:      strings.TrimSpace(raw.EventURL),
		ExternalID:    strings.TrimSpace(raw.ExternalID),
		StartAt:       startAt,
		EndAt:         endAt,
		VenueName:     venueName,
		Address:       address,
		City:          city,
		State:         state,
		// Scrapers never assign platform categories; an admin does that
		// during review.
		Categories:  []string{},
		Visibility:  VisibilityPublic,
		Source:      raw.Source,
		EventStatus: status,
	}, nil
}

// parseTime prefers a machine timestamp when the parser supplied one and
// falls back to free-text parsing.
func (n *Normalizer) parseTime(t time.Time, text string) (string, error) {
	if !t.IsZero() {
		return t.UTC().Format(time.RFC3339), nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty date text")
	}
	parsed, err := dateparse.ParseIn(text, n.loc)
	if err != nil {
		return "", err
	}
	return parsed.UTC().Format(time.RFC3339), nil
}

var stateZipRe = regexp.MustCompile(`^([A-Z]{2})(?:\s+\d{5}(?:-\d{4})?)?$`)

// SplitLocation splits a free-text venue/address blob into its parts. The
// segment before the first comma is the venue name; a trailing "ST" or
// "ST 02139" segment is the state, preceded by the city.
func SplitLocation(blob string) (venueName, address, city, state string) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return "", "", "", ""
	}

	// Multi-line blobs: first line is the venue, the rest is the address
	if idx := strings.IndexAny(blob, "\n"); idx >= 0 {
		venueName = strings.TrimSpace(blob[:idx])
		blob = strings.TrimSpace(blob[idx+1:])
	}

	parts := strings.Split(blob, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if venueName == "" {
		venueName = parts[0]
		parts = parts[1:]
	}

	if len(parts) > 0 {
		if m := stateZipRe.FindStringSubmatch(parts[len(parts)-1]); m != nil {
			state = m[1]
			parts = parts[:len(parts)-1]
		}
	}
	if len(parts) > 0 {
		city = parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}
	address = strings.Join(parts, ", ")

	return venueName, address, city, state
}
