package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/divyanshprajapati011/maps-scraper/scraper"
)

type stubScraper struct {
	fn func(ctx context.Context, query string, maxResults int) ([]scraper.Record, error)
}

func (s *stubScraper) Scrape(ctx context.Context, query string, maxResults int) ([]scraper.Record, error) {
	return s.fn(ctx, query, maxResults)
}

type memBusinessRepo struct {
	mu    sync.Mutex
	items []Business
}

func (r *memBusinessRepo) Get(_ context.Context, id string) (Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.items {
		if b.ID == id {
			return b, nil
		}
	}

	return Business{}, errors.New("business not found")
}

func (r *memBusinessRepo) Create(_ context.Context, b *Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, *b)

	return nil
}

func (r *memBusinessRepo) Select(_ context.Context, params BusinessSelectParams) ([]Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ans []Business

	for _, b := range r.items {
		if params.Query != "" && b.Query != params.Query {
			continue
		}

		ans = append(ans, b)
	}

	return ans, nil
}

func (r *memBusinessRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.items {
		if b.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}

	return errors.New("business not found")
}

func newTestServer(sc Scraper, repo BusinessRepository) *Server {
	return New(Config{
		Addr:         ":0",
		Scraper:      sc,
		BusinessRepo: repo,
	})
}

func doScrape(t *testing.T, srv *Server, body string) (*httptest.ResponseRecorder, scrapeResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var resp scrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return w, resp
}

func TestAPIScrape_InvalidBody(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubScraper{fn: func(context.Context, string, int) ([]scraper.Record, error) {
		t.Fatal("scraper must not run for malformed requests")
		return nil, nil
	}}, nil)

	w, resp := doScrape(t, srv, "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Message)
}

func TestAPIScrape_MissingQuery(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubScraper{fn: func(context.Context, string, int) ([]scraper.Record, error) {
		t.Fatal("scraper must not run without a query")
		return nil, nil
	}}, nil)

	w, resp := doScrape(t, srv, `{"query":"   "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, resp.Success)
	require.Contains(t, resp.Message, "query")
}

func TestAPIScrape_ClampsMax(t *testing.T) {
	t.Parallel()

	var gotMax int

	srv := newTestServer(&stubScraper{fn: func(_ context.Context, _ string, maxResults int) ([]scraper.Record, error) {
		gotMax = maxResults
		return nil, nil
	}}, nil)

	w, _ := doScrape(t, srv, `{"query":"coffee","max":500}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, scraper.MaxResultsCeiling, gotMax)

	w, _ = doScrape(t, srv, `{"query":"coffee"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, scraper.DefaultMaxResults, gotMax)
}

func TestAPIScrape_PartialFailureIsNot5xx(t *testing.T) {
	t.Parallel()

	partial := []scraper.Record{
		{Name: "Acme Coffee"},
		{Name: "Beanworks"},
	}

	srv := newTestServer(&stubScraper{fn: func(context.Context, string, int) ([]scraper.Record, error) {
		return partial, errors.New("browser crashed")
	}}, nil)

	w, resp := doScrape(t, srv, `{"query":"coffee","max":10}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, resp.Success)
	require.Equal(t, 2, resp.Count)
	require.Len(t, resp.Results, 2)
	require.Contains(t, resp.Message, "browser crashed")
	require.Contains(t, w.Body.String(), `"message"`)
}

func TestAPIScrape_SuccessPersists(t *testing.T) {
	t.Parallel()

	records := []scraper.Record{
		{Name: "Acme Coffee", Phone: "+1 555-0100"},
	}

	repo := &memBusinessRepo{}

	srv := newTestServer(&stubScraper{fn: func(_ context.Context, query string, _ int) ([]scraper.Record, error) {
		require.Equal(t, "coffee berlin", query)
		return records, nil
	}}, repo)

	w, resp := doScrape(t, srv, `{"query":"coffee berlin","max":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	require.Equal(t, 1, resp.Count)
	require.Equal(t, "Acme Coffee", resp.Results[0].Name)
	require.Empty(t, resp.Message)

	stored, err := repo.Select(context.Background(), BusinessSelectParams{Query: "coffee berlin"})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, "Acme Coffee", stored[0].Name)
	require.NotEmpty(t, stored[0].ID)
	require.False(t, stored[0].ScrapedAt.IsZero())
}

func TestAPIScrape_EmptyResultsIsSuccess(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubScraper{fn: func(context.Context, string, int) ([]scraper.Record, error) {
		return nil, nil
	}}, nil)

	w, resp := doScrape(t, srv, `{"query":"nonexistent place"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	require.Equal(t, 0, resp.Count)
	require.NotNil(t, resp.Results)
	require.Empty(t, resp.Results)
}

func TestAPIScrape_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubScraper{fn: func(context.Context, string, int) ([]scraper.Record, error) {
		return nil, nil
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scrape", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAPIListBusinesses_NoStorage(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&stubScraper{fn: func(context.Context, string, int) ([]scraper.Record, error) {
		return nil, nil
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPIListBusinesses_FiltersAndLimits(t *testing.T) {
	t.Parallel()

	repo := &memBusinessRepo{}
	now := time.Now().UTC()

	for _, seed := range []struct{ query, name string }{
		{"coffee berlin", "Acme Coffee"},
		{"coffee berlin", "Beanworks"},
		{"pizza rome", "Mario's"},
	} {
		b := BusinessFromRecord(seed.name, seed.query, scraper.Record{Name: seed.name}, now)
		require.NoError(t, repo.Create(context.Background(), &b))
	}

	srv := newTestServer(nil, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses?query=coffee+berlin", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp listBusinessesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/businesses?limit=0", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/businesses?offset=-1", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
