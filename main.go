package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/divyanshprajapati011/maps-scraper/runner"
	"github.com/divyanshprajapati011/maps-scraper/runner/filerunner"
	"github.com/divyanshprajapati011/maps-scraper/runner/webrunner"
	"github.com/divyanshprajapati011/maps-scraper/scraper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner.Banner()

	cfg := runner.ParseConfig()

	run, err := runnerFactory(cfg)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}

	if err := run.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("run failed: %v", err)

		closeRunner(run)
		os.Exit(1)
	}

	closeRunner(run)
	_ = runner.Telemetry().Close()
}

func runnerFactory(cfg *runner.Config) (runner.Runner, error) {
	switch cfg.RunMode {
	case runner.RunModeFile:
		return filerunner.New(cfg)
	case runner.RunModeWeb:
		return webrunner.New(cfg)
	case runner.RunModeInstallPlaywright:
		return installRunner{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}
}

func closeRunner(run runner.Runner) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := run.Close(ctx); err != nil {
		log.Printf("close failed: %v", err)
	}
}

type installRunner struct{}

func (installRunner) Run(context.Context) error {
	return scraper.Install()
}

func (installRunner) Close(context.Context) error {
	return nil
}
