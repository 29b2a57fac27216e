package webrunner

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/divyanshprajapati011/maps-scraper/postgres"
	"github.com/divyanshprajapati011/maps-scraper/runner"
	"github.com/divyanshprajapati011/maps-scraper/scraper"
	"github.com/divyanshprajapati011/maps-scraper/web"
	"github.com/divyanshprajapati011/maps-scraper/web/sqlite"
)

type webrunner struct {
	srv         *web.Server
	sessionRepo web.UserSessionRepository
	cfg         *runner.Config
}

func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.DataFolder == "" {
		return nil, fmt.Errorf("data folder is required")
	}

	if err := os.MkdirAll(cfg.DataFolder, os.ModePerm); err != nil {
		return nil, err
	}

	var (
		userRepo     web.UserRepository
		sessionRepo  web.UserSessionRepository
		apiKeyRepo   web.APIKeyRepository
		businessRepo web.BusinessRepository
	)

	if cfg.Dsn != "" {
		log.Printf("PostgreSQL configured")

		pgDB, err := postgres.InitDB(cfg.Dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}

		userRepo = postgres.NewUserRepository(pgDB)
		sessionRepo = postgres.NewUserSessionRepository(pgDB)
		apiKeyRepo = postgres.NewAPIKeyRepository(pgDB)
		businessRepo = postgres.NewBusinessRepository(pgDB)
	} else {
		log.Printf("no DSN configured, using SQLite")

		dbpath := filepath.Join(cfg.DataFolder, "scraper.db")

		db, err := sqlite.InitDB(dbpath)
		if err != nil {
			return nil, err
		}

		userRepo = sqlite.NewUserRepository(db)
		sessionRepo = sqlite.NewSessionRepository(db)
		apiKeyRepo = sqlite.NewAPIKeyRepository(db)
		businessRepo = sqlite.NewBusinessRepository(db)
	}

	var uploader web.ResultUploader
	if cfg.S3Uploader != nil {
		uploader = cfg.S3Uploader
		log.Printf("S3 result uploads enabled (bucket %s)", cfg.S3Bucket)
	}

	srv := web.New(web.Config{
		Addr:         cfg.Addr,
		Scraper:      &scrapeAdapter{opts: cfg.ScraperOptions()},
		AuthSvc:      web.NewAuthService(userRepo, sessionRepo),
		APIKeySvc:    web.NewAPIKeyService(apiKeyRepo),
		BusinessRepo: businessRepo,
		Uploader:     uploader,
		Telemetry:    runner.Telemetry(),
	})

	ans := webrunner{
		srv:         srv,
		sessionRepo: sessionRepo,
		cfg:         cfg,
	}

	return &ans, nil
}

func (w *webrunner) Run(ctx context.Context) error {
	egroup, ctx := errgroup.WithContext(ctx)

	egroup.Go(func() error {
		return w.srv.Start(ctx)
	})

	egroup.Go(func() error {
		return w.cleanupSessions(ctx)
	})

	return egroup.Wait()
}

func (w *webrunner) Close(context.Context) error {
	return nil
}

func (w *webrunner) cleanupSessions(ctx context.Context) error {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.sessionRepo.CleanupExpired(ctx); err != nil {
				log.Printf("failed to cleanup expired sessions: %v", err)
			}
		}
	}
}

// scrapeAdapter launches a fresh browser pipeline per request. Keeping
// browsers request-scoped means a crashed scrape never poisons the next one.
type scrapeAdapter struct {
	opts scraper.Options
}

func (a *scrapeAdapter) Scrape(ctx context.Context, query string, maxResults int) ([]scraper.Record, error) {
	return scraper.New(a.opts).Run(ctx, query, maxResults)
}
