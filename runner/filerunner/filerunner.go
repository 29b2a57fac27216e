package filerunner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/divyanshprajapati011/maps-scraper/runner"
	"github.com/divyanshprajapati011/maps-scraper/scraper"
	"github.com/divyanshprajapati011/maps-scraper/tlmt"
)

type fileRunner struct {
	cfg     *runner.Config
	input   io.Reader
	output  io.Writer
	outfile *os.File
}

func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeFile {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	ans := &fileRunner{
		cfg: cfg,
	}

	if err := ans.setInput(); err != nil {
		return nil, err
	}

	if err := ans.setOutput(); err != nil {
		return nil, err
	}

	return ans, nil
}

type queryResult struct {
	Query   string           `json:"query"`
	Count   int              `json:"count"`
	Results []scraper.Record `json:"results"`
	Error   string           `json:"error,omitempty"`
}

func (r *fileRunner) Run(ctx context.Context) (err error) {
	queries, err := readQueries(r.input)
	if err != nil {
		return err
	}

	t0 := time.Now().UTC()

	defer func() {
		params := map[string]any{
			"query_count": len(queries),
			"duration":    time.Now().UTC().Sub(t0).String(),
		}

		if err != nil {
			params["error"] = err.Error()
		}

		_ = runner.Telemetry().Send(ctx, tlmt.NewEvent("file_runner", params))
	}()

	if len(queries) == 0 {
		return fmt.Errorf("no queries in input")
	}

	enc := json.NewEncoder(r.output)

	var mu sync.Mutex

	opts := r.cfg.ScraperOptions()

	egroup, ctx := errgroup.WithContext(ctx)
	egroup.SetLimit(r.cfg.Concurrency)

	for _, query := range queries {
		egroup.Go(func() error {
			t1 := time.Now().UTC()

			records, scrapeErr := scraper.New(opts).Run(ctx, query, r.cfg.MaxResults)

			result := queryResult{
				Query:   query,
				Count:   len(records),
				Results: records,
			}

			if result.Results == nil {
				result.Results = []scraper.Record{}
			}

			if scrapeErr != nil {
				result.Error = scrapeErr.Error()
				log.Printf("query %q failed after %v: %v", query, time.Now().UTC().Sub(t1), scrapeErr)
			} else {
				log.Printf("query %q returned %d results in %v", query, len(records), time.Now().UTC().Sub(t1))
			}

			mu.Lock()
			defer mu.Unlock()

			return enc.Encode(&result)
		})
	}

	return egroup.Wait()
}

func (r *fileRunner) Close(context.Context) error {
	if r.input != nil {
		if closer, ok := r.input.(io.Closer); ok && r.input != os.Stdin {
			_ = closer.Close()
		}
	}

	if r.outfile != nil {
		return r.outfile.Close()
	}

	return nil
}

func (r *fileRunner) setInput() error {
	switch r.cfg.InputFile {
	case "stdin":
		r.input = os.Stdin
	default:
		f, err := os.Open(r.cfg.InputFile)
		if err != nil {
			return err
		}

		r.input = f
	}

	return nil
}

func (r *fileRunner) setOutput() error {
	switch r.cfg.ResultsFile {
	case "stdout":
		r.output = os.Stdout
	default:
		f, err := os.Create(r.cfg.ResultsFile)
		if err != nil {
			return err
		}

		r.outfile = f
		r.output = f
	}

	return nil
}

func readQueries(input io.Reader) ([]string, error) {
	var queries []string

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		queries = append(queries, line)
	}

	return queries, scanner.Err()
}
