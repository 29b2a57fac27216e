package web

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/divyanshprajapati011/maps-scraper/scraper"
)

// Business is a scraped listing persisted with the query that produced it.
type Business struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Website     string    `json:"website"`
	Description string    `json:"description"`
	Rating      string    `json:"rating"`
	Reviews     int       `json:"reviews"`
	PlusCode    string    `json:"plus_code"`
	Email       string    `json:"email"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

func (b *Business) Validate() error {
	if b.ID == "" {
		return errors.New("missing id")
	}

	if b.Name == "" {
		return errors.New("missing name")
	}

	if b.ScrapedAt.IsZero() {
		return errors.New("missing scraped_at")
	}

	return nil
}

// BusinessFromRecord lifts a scrape result into the persisted form.
func BusinessFromRecord(id, query string, rec scraper.Record, at time.Time) Business {
	return Business{
		ID:          id,
		Query:       query,
		Name:        rec.Name,
		Address:     rec.Address,
		Phone:       rec.Phone,
		Website:     rec.Website,
		Description: rec.Description,
		Rating:      rec.Rating,
		Reviews:     rec.Reviews,
		PlusCode:    rec.PlusCode,
		Email:       rec.Email,
		ScrapedAt:   at,
	}
}

type BusinessSelectParams struct {
	Query  string
	Limit  int
	Offset int
}

type BusinessRepository interface {
	Get(context.Context, string) (Business, error)
	Create(context.Context, *Business) error
	Select(context.Context, BusinessSelectParams) ([]Business, error)
	Delete(context.Context, string) error
}

// ResultUploader ships a finished result set to external storage.
type ResultUploader interface {
	Upload(ctx context.Context, key string, body io.Reader) error
}
