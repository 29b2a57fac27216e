package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/divyanshprajapati011/maps-scraper/scraper"
	"github.com/divyanshprajapati011/maps-scraper/tlmt"
)

// Scraper runs one search and returns the collected records. The browser
// pipeline implements it; tests plug in stubs.
type Scraper interface {
	Scrape(ctx context.Context, query string, maxResults int) ([]scraper.Record, error)
}

type Config struct {
	Addr string

	Scraper      Scraper
	AuthSvc      *AuthService
	APIKeySvc    *APIKeyService
	BusinessRepo BusinessRepository
	Uploader     ResultUploader
	Telemetry    tlmt.Telemetry
}

type Server struct {
	srv          *http.Server
	scraper      Scraper
	authSvc      *AuthService
	apiKeySvc    *APIKeyService
	businessRepo BusinessRepository
	uploader     ResultUploader
	telemetry    tlmt.Telemetry
}

func New(cfg Config) *Server {
	ans := Server{
		scraper:      cfg.Scraper,
		authSvc:      cfg.AuthSvc,
		apiKeySvc:    cfg.APIKeySvc,
		businessRepo: cfg.BusinessRepo,
		uploader:     cfg.Uploader,
		telemetry:    cfg.Telemetry,
		srv: &http.Server{
			Addr:              cfg.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			// Scrapes drive a real browser and can legitimately take
			// minutes, so the write timeout is generous.
			WriteTimeout:   15 * time.Minute,
			IdleTimeout:    120 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
	}

	ans.srv.Handler = ans.routes()

	return &ans
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	// Authentication API routes
	mux.HandleFunc("/api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("/api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("/api/v1/auth/logout", s.SessionAuthMiddleware(s.handleLogout))
	mux.HandleFunc("/api/v1/auth/me", s.SessionAuthMiddleware(s.handleGetMe))
	mux.HandleFunc("/api/v1/auth/change-password", s.SessionAuthMiddleware(s.handleChangePassword))

	mux.HandleFunc("/api/v1/scrape", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderJSON(w, http.StatusMethodNotAllowed, apiError{
				Code:    http.StatusMethodNotAllowed,
				Message: "Method not allowed",
			})

			return
		}

		s.apiScrape(w, r)
	})

	mux.HandleFunc("/api/v1/businesses", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			renderJSON(w, http.StatusMethodNotAllowed, apiError{
				Code:    http.StatusMethodNotAllowed,
				Message: "Method not allowed",
			})

			return
		}

		s.apiListBusinesses(w, r)
	})

	// API key management requires a logged-in session, not an API key:
	// otherwise a leaked key could mint more keys.
	if s.apiKeySvc != nil {
		mux.HandleFunc("/api/v1/apikeys", s.SessionAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				s.apiCreateAPIKey(w, r)
			case http.MethodGet:
				s.apiListAPIKeys(w, r)
			default:
				renderJSON(w, http.StatusMethodNotAllowed, apiError{
					Code:    http.StatusMethodNotAllowed,
					Message: "Method not allowed",
				})
			}
		}))

		mux.HandleFunc("/api/v1/apikeys/{id}", s.SessionAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
			r = requestWithID(r)

			switch r.Method {
			case http.MethodGet:
				s.apiGetAPIKey(w, r)
			case http.MethodDelete:
				s.apiDeleteAPIKey(w, r)
			default:
				renderJSON(w, http.StatusMethodNotAllowed, apiError{
					Code:    http.StatusMethodNotAllowed,
					Message: "Method not allowed",
				})
			}
		}))

		mux.HandleFunc("/api/v1/apikeys/{id}/revoke", s.SessionAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
			r = requestWithID(r)

			if r.Method != http.MethodPost {
				renderJSON(w, http.StatusMethodNotAllowed, apiError{
					Code:    http.StatusMethodNotAllowed,
					Message: "Method not allowed",
				})

				return
			}

			s.apiRevokeAPIKey(w, r)
		}))
	}

	handler := securityHeaders(mux)

	if s.apiKeySvc != nil {
		handler = s.applyAPIKeyAuth(handler)
	}

	return handler
}

// applyAPIKeyAuth guards /api/v1/ routes with API key authentication, with
// session tokens accepted as a fallback. Auth routes stay open so users can
// log in, and /api/v1/apikeys already enforces session auth itself.
func (s *Server) applyAPIKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if !strings.HasPrefix(path, "/api/v1/") ||
			strings.HasPrefix(path, "/api/v1/auth/") ||
			strings.HasPrefix(path, "/api/v1/apikeys") {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()

		if s.authSvc != nil {
			sessionToken := extractSessionToken(r)
			if sessionToken != "" {
				user, _, err := s.authSvc.ValidateSession(ctx, sessionToken)
				if err == nil {
					ctx = context.WithValue(ctx, contextKeyUser, user)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
		}

		apiKey := extractAPIKey(r)

		if apiKey == "" {
			renderJSON(w, http.StatusUnauthorized, apiError{
				Code:    http.StatusUnauthorized,
				Message: "API key is required. Provide it via Authorization header (Bearer token), X-API-Key header, or api_key query parameter.",
			})
			return
		}

		if _, err := s.apiKeySvc.Validate(ctx, apiKey); err != nil {
			renderJSON(w, http.StatusUnauthorized, apiError{
				Code:    http.StatusUnauthorized,
				Message: "Invalid or expired API key",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()

		err := s.srv.Shutdown(context.Background())
		if err != nil {
			log.Println(err)

			return
		}

		log.Println("server stopped")
	}()

	fmt.Fprintf(os.Stderr, "listening on http://localhost%s\n", s.srv.Addr)

	err := s.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

type ctxKey string

const idCtxKey ctxKey = "id"

func requestWithID(r *http.Request) *http.Request {
	id := r.PathValue("id")
	if id == "" {
		id = r.URL.Query().Get("id")
	}

	parsed, err := uuid.Parse(id)
	if err == nil {
		r = r.WithContext(context.WithValue(r.Context(), idCtxKey, parsed))
	}

	return r
}

func getIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(idCtxKey).(uuid.UUID)

	return id, ok
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func renderJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	_ = json.NewEncoder(w).Encode(data)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")

		next.ServeHTTP(w, r)
	})
}
