package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/divyanshprajapati011/maps-scraper/scraper"
	"github.com/divyanshprajapati011/maps-scraper/tlmt"
)

type scrapeRequest struct {
	Query string `json:"query"`
	Max   int    `json:"max"`
}

type scrapeResponse struct {
	Success bool             `json:"success"`
	Query   string           `json:"query"`
	Count   int              `json:"count"`
	Results []scraper.Record `json:"results"`
	Message string           `json:"message,omitempty"`
}

// apiScrape handles POST /api/v1/scrape. Scraping failures are reported in
// the response body with success=false, never as a 5xx: a broken listing or
// a mid-run browser crash is an outcome, not a server fault. Only malformed
// requests get a 4xx, always before a browser is launched.
func (s *Server) apiScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderJSON(w, http.StatusBadRequest, scrapeResponse{
			Success: false,
			Results: []scraper.Record{},
			Message: "invalid request body",
		})

		return
	}

	sr := scraper.NewSearchRequest(req.Query, req.Max)
	if err := sr.Validate(); err != nil {
		renderJSON(w, http.StatusBadRequest, scrapeResponse{
			Success: false,
			Query:   sr.Query,
			Results: []scraper.Record{},
			Message: err.Error(),
		})

		return
	}

	start := time.Now()

	records, err := s.scraper.Scrape(r.Context(), sr.Query, sr.Max)
	if records == nil {
		records = []scraper.Record{}
	}

	s.sendScrapeEvent(r, sr, len(records), err, time.Since(start))

	if err != nil {
		log.Printf("scrape %q failed after %d records: %v", sr.Query, len(records), err)

		renderJSON(w, http.StatusOK, scrapeResponse{
			Success: false,
			Query:   sr.Query,
			Count:   len(records),
			Results: records,
			Message: err.Error(),
		})

		return
	}

	s.persistResults(r, sr.Query, records)

	renderJSON(w, http.StatusOK, scrapeResponse{
		Success: true,
		Query:   sr.Query,
		Count:   len(records),
		Results: records,
	})
}

// persistResults stores and uploads finished results. Both are best effort:
// the scrape already succeeded and its records are on their way to the
// caller regardless.
func (s *Server) persistResults(r *http.Request, query string, records []scraper.Record) {
	now := time.Now().UTC()

	if s.businessRepo != nil {
		for i := range records {
			business := BusinessFromRecord(uuid.New().String(), query, records[i], now)
			if err := s.businessRepo.Create(r.Context(), &business); err != nil {
				log.Printf("failed to store business %q: %v", business.Name, err)
			}
		}
	}

	if s.uploader != nil && len(records) > 0 {
		payload, err := json.Marshal(records)
		if err != nil {
			return
		}

		key := fmt.Sprintf("scrapes/%s/%s.json", now.Format("2006-01-02"), uuid.New().String())
		if err := s.uploader.Upload(r.Context(), key, bytes.NewReader(payload)); err != nil {
			log.Printf("failed to upload results for %q: %v", query, err)
		}
	}
}

func (s *Server) sendScrapeEvent(r *http.Request, sr scraper.SearchRequest, count int, err error, took time.Duration) {
	if s.telemetry == nil {
		return
	}

	params := map[string]any{
		"max":         sr.Max,
		"count":       count,
		"duration_ms": took.Milliseconds(),
		"success":     err == nil,
	}

	_ = s.telemetry.Send(r.Context(), tlmt.NewEvent("scrape", params))
}

type listBusinessesResponse struct {
	Businesses []Business `json:"businesses"`
	Count      int        `json:"count"`
}

// apiListBusinesses handles GET /api/v1/businesses.
func (s *Server) apiListBusinesses(w http.ResponseWriter, r *http.Request) {
	if s.businessRepo == nil {
		renderJSON(w, http.StatusServiceUnavailable, apiError{
			Code:    http.StatusServiceUnavailable,
			Message: "Storage not configured",
		})

		return
	}

	params := BusinessSelectParams{
		Query: r.URL.Query().Get("query"),
		Limit: 100,
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			renderJSON(w, http.StatusUnprocessableEntity, apiError{
				Code:    http.StatusUnprocessableEntity,
				Message: "invalid limit",
			})

			return
		}

		params.Limit = limit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			renderJSON(w, http.StatusUnprocessableEntity, apiError{
				Code:    http.StatusUnprocessableEntity,
				Message: "invalid offset",
			})

			return
		}

		params.Offset = offset
	}

	businesses, err := s.businessRepo.Select(r.Context(), params)
	if err != nil {
		renderJSON(w, http.StatusInternalServerError, apiError{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})

		return
	}

	if businesses == nil {
		businesses = []Business{}
	}

	renderJSON(w, http.StatusOK, listBusinessesResponse{
		Businesses: businesses,
		Count:      len(businesses),
	})
}
