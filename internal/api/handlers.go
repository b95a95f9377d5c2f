package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eventscout/internal/database"
	"eventscout/internal/importer"
	"eventscout/internal/runner"
	"eventscout/internal/scraper"
	"eventscout/logger"
	pkgerrors "eventscout/pkg/errors"
)

// Handler serves the admin scrape-and-import API
type Handler struct {
	deps    scraper.Deps
	imp     *importer.Importer
	run     *runner.Runner
	events  *database.EventRepository
	places  *database.PlaceRepository
	configs *database.ScraperConfigRepository
	log     *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(deps scraper.Deps, imp *importer.Importer, run *runner.Runner,
	events *database.EventRepository, places *database.PlaceRepository,
	configs *database.ScraperConfigRepository) *Handler {
	return &Handler{
		deps:    deps,
		imp:     imp,
		run:     run,
		events:  events,
		places:  places,
		configs: configs,
		log:     logger.ForComponent("api"),
	}
}

// ScrapeDice handles POST /api/scrape-dice
func (h *Handler) ScrapeDice(c *gin.Context) {
	var req scrapeDiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}
	h.scrape(c, scraper.KindDice, scraper.Request{URL: req.URL})
}

// ScrapeClubCafe handles POST /api/scrape-clubcafe
func (h *Handler) ScrapeClubCafe(c *gin.Context) {
	var req scrapeClubCafeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}
	h.scrape(c, scraper.KindClubCafe, scraper.Request{URL: req.URL, MaxPages: req.MaxPages})
}

// ScrapePosh handles POST /api/scrape-posh
func (h *Handler) ScrapePosh(c *gin.Context) {
	var req scrapePoshRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.URLs) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "urls must be a non-empty list"})
		return
	}
	h.scrape(c, scraper.KindPosh, scraper.Request{URLs: req.URLs})
}

// ScrapeTicketmaster handles POST /api/scrape-ticketmaster
func (h *Handler) ScrapeTicketmaster(c *gin.Context) {
	var req scrapeTicketmasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "venueName and stateCode are required"})
		return
	}
	if len(req.StateCode) != 2 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "stateCode must be 2 letters"})
		return
	}
	h.scrape(c, scraper.KindTicketmaster, scraper.Request{
		VenueName: req.VenueName,
		StateCode: req.StateCode,
	})
}

// scrape dispatches to the requested source and renders the common
// ScrapeResult shape.
func (h *Handler) scrape(c *gin.Context, kind scraper.Kind, req scraper.Request) {
	s, err := scraper.New(kind, h.deps)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.Scrape(c.Request.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("scraper", string(kind)).Msg("Scrape failed")
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// BatchCreateEvents handles POST /api/events/batch
func (h *Handler) BatchCreateEvents(c *gin.Context) {
	var req importer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Events) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "events must be a non-empty list"})
		return
	}

	result, err := h.imp.BatchCreateEvents(c.Request.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Msg("Batch import failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunScraperConfig handles POST /api/scraper-configs/:id/run
func (h *Handler) RunScraperConfig(c *gin.Context) {
	id := c.Param("id")

	sc, err := h.configs.GetScraperConfig(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if sc == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "scraper config not found"})
		return
	}

	scrapeRes, importRes, err := h.run.Run(c.Request.Context(), *sc)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound):
			status = http.StatusNotFound
		case pkgerrors.IsType(err, pkgerrors.ErrorTypeConfiguration):
			status = http.StatusBadRequest
		}
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, runConfigResponse{Scrape: scrapeRes, Import: importRes})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Stats handles GET /stats
func (h *Handler) Stats(c *gin.Context) {
	stats := gin.H{}

	if count, err := h.events.CountEvents(c.Request.Context()); err == nil {
		stats["events"] = count
	}
	if count, err := h.places.CountPlaces(c.Request.Context()); err == nil {
		stats["places"] = count
	}
	if configs, err := h.configs.ListScraperConfigs(c.Request.Context()); err == nil {
		stats["scraper_configs"] = len(configs)
	}

	c.JSON(http.StatusOK, stats)
}
