package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventscout/helpers"
	"eventscout/internal/database"
	"eventscout/internal/importer"
	"eventscout/internal/runner"
	"eventscout/internal/scraper"
)

const testAdminKey = "test-admin-key"

type testEnv struct {
	router  *gin.Engine
	events  *database.EventRepository
	places  *database.PlaceRepository
	configs *database.ScraperConfigRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, _, err = database.RunMigrations(db)
	require.NoError(t, err)

	events := database.NewEventRepository(db)
	places := database.NewPlaceRepository(db)
	configs := database.NewScraperConfigRepository(db)

	deps := scraper.Deps{
		Fetcher:    helpers.NewFetcher(5 * time.Second),
		Normalizer: scraper.NewNormalizer(time.UTC),
		MaxPages:   3,
	}

	imp := importer.New(events, nil)
	run := runner.New(places, imp, deps)
	handler := NewHandler(deps, imp, run, events, places, configs)

	return &testEnv{
		router:  NewServer(handler, testAdminKey),
		events:  events,
		places:  places,
		configs: configs,
	}
}

func (env *testEnv) request(t *testing.T, method, path string, body interface{}, adminKey string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if adminKey != "" {
		req.Header.Set("X-Admin-Key", adminKey)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func eventPage(name string) string {
	return fmt.Sprintf(`<html><head><script type="application/ld+json">
{"@context":"https://schema.org","@type":"Event","name":%q,
 "startDate":"2026-02-01T20:00:00-05:00",
 "location":{"@type":"Place","name":"The Blue Room",
   "address":{"@type":"PostalAddress","streetAddress":"10 Main St","addressLocality":"Boston","addressRegion":"MA"}}}
</script></head><body></body></html>`, name)
}

func TestAdminAuth(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]interface{}{"url": "https://dice.fm/venue/sonia"}

	w := env.request(t, http.MethodPost, "/api/scrape-dice", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodPost, "/api/scrape-dice", body, "wrong-key")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Health and stats stay public
	w = env.request(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/stats", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScrapePoshEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/e/jazz-night":
			fmt.Fprint(w, eventPage("Jazz Night"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/scrape-posh", map[string]interface{}{
		"urls": []string{server.URL + "/e/jazz-night", server.URL + "/e/gone"},
	}, testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)

	var result scraper.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Events, 1)
	assert.Equal(t, "Jazz Night", result.Events[0].Title)
	assert.Equal(t, "jazz-night", result.Events[0].ExternalID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.TotalEvents)

	// Empty URL list never reaches the scraper
	w = env.request(t, http.MethodPost, "/api/scrape-posh", map[string]interface{}{"urls": []string{}}, testAdminKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScrapeTicketmasterEndpointValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/scrape-ticketmaster", map[string]interface{}{
		"venueName": "TD Garden",
		"stateCode": "Mass",
	}, testAdminKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/scrape-ticketmaster", map[string]interface{}{
		"venueName": "TD Garden",
	}, testAdminKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchCreateEventsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]interface{}{
		"sourceUrl": "https://dice.fm/venue/sonia",
		"events": []map[string]interface{}{
			{"title": "Show A", "externalId": "a", "startAt": "2026-03-01T20:00:00Z", "source": "dice"},
			{"title": "Show B", "externalId": "b", "startAt": "2026-03-02T20:00:00Z", "source": "dice"},
		},
	}

	w := env.request(t, http.MethodPost, "/api/events/batch", body, testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)

	var result importer.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Created)

	// Same batch again: everything deduplicates
	w = env.request(t, http.MethodPost, "/api/events/batch", body, testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 2, result.Skipped)

	w = env.request(t, http.MethodPost, "/api/events/batch", map[string]interface{}{"events": []string{}}, testAdminKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunScraperConfigEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, eventPage("Jazz Night"))
	}))
	defer server.Close()

	env := newTestEnv(t)

	placeID, err := env.places.CreatePlace(context.Background(), database.Place{
		Name: "The Blue Room",
		Kind: database.PlaceKindVenue,
	})
	require.NoError(t, err)

	configID, err := env.configs.CreateScraperConfig(context.Background(), database.ScraperConfig{
		PlaceID:      placeID,
		Scraper:      "posh",
		SearchString: server.URL + "/e/jazz-night",
	})
	require.NoError(t, err)

	w := env.request(t, http.MethodPost, "/api/scraper-configs/"+configID+"/run", nil, testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Scrape scraper.Result  `json:"scrape"`
		Import importer.Result `json:"import"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Scrape.TotalEvents)
	assert.Equal(t, 1, resp.Import.Created)

	// Imported rows carry the config's place
	rows, err := env.events.ListEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, placeID, rows[0].VenueID)

	w = env.request(t, http.MethodPost, "/api/scraper-configs/nope/run", nil, testAdminKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.places.CreatePlace(context.Background(), database.Place{Name: "Sonia", Kind: database.PlaceKindVenue})
	require.NoError(t, err)

	w := env.request(t, http.MethodGet, "/stats", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats["events"])
	assert.Equal(t, 1, stats["places"])
	assert.Equal(t, 0, stats["scraper_configs"])
}
