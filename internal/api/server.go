package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eventscout/logger"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler, adminKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	setupRoutes(r, handler, adminKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, adminKey string) {
	r.GET("/health", handler.Health)
	r.GET("/stats", handler.Stats)

	// Admin API: every scraping and import operation requires the admin key
	api := r.Group("/api")
	api.Use(adminAuth(adminKey))
	{
		api.POST("/scrape-dice", handler.ScrapeDice)
		api.POST("/scrape-clubcafe", handler.ScrapeClubCafe)
		api.POST("/scrape-posh", handler.ScrapePosh)
		api.POST("/scrape-ticketmaster", handler.ScrapeTicketmaster)
		api.POST("/events/batch", handler.BatchCreateEvents)
		api.POST("/scraper-configs/:id/run", handler.RunScraperConfig)
	}
}

// adminAuth rejects requests without a valid X-Admin-Key header.
// Authorization failures are fatal to the request, unlike per-item scrape
// and import failures.
func adminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-Admin-Key")

		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "admin key required"})
			return
		}
		if adminKey == "" || provided != adminKey {
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: "invalid admin key"})
			return
		}

		c.Next()
	}
}

// requestLogger logs each request through the application logger
func requestLogger() gin.HandlerFunc {
	log := logger.ForComponent("api")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	}
}
