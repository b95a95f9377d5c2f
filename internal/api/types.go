package api

import (
	"eventscout/internal/importer"
	"eventscout/internal/scraper"
)

type scrapeDiceRequest struct {
	URL string `json:"url" binding:"required"`
}

type scrapeClubCafeRequest struct {
	URL      string `json:"url" binding:"required"`
	MaxPages int    `json:"maxPages"`
}

type scrapePoshRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

type scrapeTicketmasterRequest struct {
	VenueName string `json:"venueName" binding:"required"`
	StateCode string `json:"stateCode" binding:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type runConfigResponse struct {
	Scrape *scraper.Result `json:"scrape"`
	Import *importer.Result `json:"import"`
}
