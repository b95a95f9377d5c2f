package database

// Event represents a persisted event row. Timestamps are RFC 3339 strings;
// an empty EndAt means the event has no end time.
type Event struct {
	ID            string
	Title         string
	Description   string
	CoverImageURL string
	EventURL      string
	Source        string
	ExternalID    string
	SourceURL     string
	StartAt       string
	EndAt         string
	VenueID       string
	OrganizerID   string
	VenueName     string
	Address       string
	City          string
	State         string
	Categories    []string
	Visibility    string
	EventStatus   string
	CreatedAt     string
}

// Place kinds
const (
	PlaceKindVenue     = "venue"
	PlaceKindOrganizer = "organizer"
)

// Place represents a venue or an organizer
type Place struct {
	ID        string
	Name      string
	Kind      string
	Address   string
	City      string
	State     string
	CreatedAt string
}

// ScraperConfig represents one configured scraper feeding a place.
// SearchString is source-specific: a listing URL for dice/clubcafe, a
// comma-separated list of event or group URLs for posh, and a venue name
// for ticketmaster (the state comes from the linked place).
type ScraperConfig struct {
	ID           string
	PlaceID      string
	Scraper      string
	SearchString string
	CreatedAt    string
}

// DedupKey is the (sourceUrl, externalId) pair used to recognize a
// previously imported event.
type DedupKey struct {
	SourceURL  string
	ExternalID string
}
