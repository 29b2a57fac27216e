package scraper

import (
	"errors"
	"strings"
)

// Record is one scraped business listing. Every field is best-effort: when a
// marker is absent from the detail pane the field stays empty (Reviews stays
// 0) and extraction carries on.
type Record struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Description string `json:"description"`
	Rating      string `json:"rating"`
	Reviews     int    `json:"reviews"`
	PlusCode    string `json:"plus_code"`
	Email       string `json:"email"`
}

// SearchRequest is one scrape request as accepted by the API layer.
type SearchRequest struct {
	Query string
	Max   int
}

func NewSearchRequest(query string, maxResults int) SearchRequest {
	req := SearchRequest{
		Query: strings.TrimSpace(query),
		Max:   maxResults,
	}

	if req.Max <= 0 {
		req.Max = DefaultMaxResults
	}

	if req.Max > MaxResultsCeiling {
		req.Max = MaxResultsCeiling
	}

	return req
}

func (r *SearchRequest) Validate() error {
	if r.Query == "" {
		return errors.New("missing query")
	}

	if r.Max < 1 || r.Max > MaxResultsCeiling {
		return errors.New("max out of range")
	}

	return nil
}
