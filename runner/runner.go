package runner

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/divyanshprajapati011/maps-scraper/s3uploader"
	"github.com/divyanshprajapati011/maps-scraper/scraper"
	"github.com/divyanshprajapati011/maps-scraper/tlmt"
	"github.com/divyanshprajapati011/maps-scraper/tlmt/gonoop"
	"github.com/divyanshprajapati011/maps-scraper/tlmt/goposthog"
)

const (
	RunModeFile = iota + 1
	RunModeInstallPlaywright
	RunModeWeb
)

var (
	ErrInvalidRunMode = errors.New("invalid run mode")
)

type Runner interface {
	Run(context.Context) error
	Close(context.Context) error
}

type Config struct {
	Concurrency      int
	InputFile        string
	ResultsFile      string
	LangCode         string
	Debug            bool
	Dsn              string
	Email            bool
	MaxResults       int
	RunMode          int
	DisableTelemetry bool
	WebRunner        bool
	DataFolder       string
	AwsAccessKey     string
	AwsSecretKey     string
	AwsRegion        string
	S3Bucket         string
	S3Uploader       *s3uploader.Uploader
	Addr             string
}

func ParseConfig() *Config {
	cfg := Config{}

	// Optional .env next to the binary; real env vars win.
	_ = godotenv.Load()

	if os.Getenv("PLAYWRIGHT_INSTALL_ONLY") == "1" {
		cfg.RunMode = RunModeInstallPlaywright

		return &cfg
	}

	flag.IntVar(&cfg.Concurrency, "c", max(runtime.NumCPU()/2, 1), "sets the concurrency for file mode [default: half of CPU cores]")
	flag.StringVar(&cfg.ResultsFile, "results", "stdout", "path to the results file [default: stdout]")
	flag.StringVar(&cfg.InputFile, "input", "", "path to the input file with queries (one per line) [default: empty]")
	flag.StringVar(&cfg.LangCode, "lang", "en", "language code for Google (e.g., 'de' for German) [default: en]")
	flag.BoolVar(&cfg.Debug, "debug", false, "enable headful crawl (opens browser window) [default: false]")
	flag.StringVar(&cfg.Dsn, "dsn", "", "PostgreSQL connection string [default: embedded SQLite]")
	flag.BoolVar(&cfg.Email, "email", false, "extract emails from listing websites")
	flag.IntVar(&cfg.MaxResults, "max", scraper.DefaultMaxResults, "maximum results per query")
	flag.BoolVar(&cfg.WebRunner, "web", false, "run web server instead of crawling")
	flag.StringVar(&cfg.DataFolder, "data-folder", "webdata", "data folder for web runner")
	flag.StringVar(&cfg.AwsAccessKey, "aws-access-key", "", "AWS access key")
	flag.StringVar(&cfg.AwsSecretKey, "aws-secret-key", "", "AWS secret key")
	flag.StringVar(&cfg.AwsRegion, "aws-region", "", "AWS region")
	flag.StringVar(&cfg.S3Bucket, "s3-bucket", "", "S3 bucket for result uploads")
	flag.StringVar(&cfg.Addr, "addr", ":8080", "address to listen on for web server")
	flag.BoolVar(&cfg.DisableTelemetry, "disable-telemetry", false, "disable anonymous usage telemetry")

	flag.Parse()

	if cfg.AwsAccessKey == "" {
		cfg.AwsAccessKey = os.Getenv("MY_AWS_ACCESS_KEY")
	}

	if cfg.AwsSecretKey == "" {
		cfg.AwsSecretKey = os.Getenv("MY_AWS_SECRET_KEY")
	}

	if cfg.AwsRegion == "" {
		cfg.AwsRegion = os.Getenv("MY_AWS_REGION")
	}

	if cfg.S3Bucket == "" {
		cfg.S3Bucket = os.Getenv("S3_BUCKET")
	}

	if cfg.Dsn == "" {
		cfg.Dsn = os.Getenv("DATABASE_URL")
	}

	if cfg.Concurrency < 1 {
		panic("Concurrency must be greater than 0")
	}

	if cfg.MaxResults < 1 || cfg.MaxResults > scraper.MaxResultsCeiling {
		panic(fmt.Sprintf("MaxResults must be between 1 and %d", scraper.MaxResultsCeiling))
	}

	if cfg.S3Bucket != "" && cfg.AwsRegion != "" {
		uploader, err := s3uploader.New(cfg.AwsAccessKey, cfg.AwsSecretKey, cfg.AwsRegion, cfg.S3Bucket)
		if err != nil {
			panic(err)
		}

		cfg.S3Uploader = uploader
	}

	switch {
	case cfg.WebRunner || cfg.InputFile == "":
		cfg.RunMode = RunModeWeb
	default:
		cfg.RunMode = RunModeFile
	}

	return &cfg
}

// ScraperOptions maps runtime flags onto browser session options.
func (c *Config) ScraperOptions() scraper.Options {
	opts := scraper.DefaultOptions()
	opts.Headless = !c.Debug
	opts.LangCode = c.LangCode
	opts.ExtractEmail = c.Email

	return opts
}

var (
	telemetryOnce sync.Once
	telemetry     tlmt.Telemetry
)

func Telemetry() tlmt.Telemetry {
	telemetryOnce.Do(func() {
		disableTel := func() bool {
			return os.Getenv("DISABLE_TELEMETRY") == "1"
		}()

		if disableTel {
			telemetry = gonoop.New()

			return
		}

		apiKey := os.Getenv("POSTHOG_API_KEY")
		endpoint := os.Getenv("POSTHOG_ENDPOINT")

		if endpoint == "" {
			endpoint = "https://eu.i.posthog.com"
		}

		val, err := goposthog.New(apiKey, endpoint)
		if err != nil || val == nil {
			telemetry = gonoop.New()

			return
		}

		telemetry = val
	})

	return telemetry
}

func wrapText(text string, width int) []string {
	var lines []string

	currentLine := ""
	currentWidth := 0

	for _, r := range text {
		runeWidth := runewidth.RuneWidth(r)
		if currentWidth+runeWidth > width {
			lines = append(lines, currentLine)
			currentLine = string(r)
			currentWidth = runeWidth
		} else {
			currentLine += string(r)
			currentWidth += runeWidth
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

func banner(messages []string, width int) string {
	if width <= 0 {
		var err error

		width, _, err = term.GetSize(0)
		if err != nil {
			width = 80
		}
	}

	if width < 20 {
		width = 20
	}

	contentWidth := width - 4

	var wrappedLines []string
	for _, message := range messages {
		wrappedLines = append(wrappedLines, wrapText(message, contentWidth)...)
	}

	var builder strings.Builder

	builder.WriteString("╔" + strings.Repeat("═", width-2) + "╗\n")

	for _, line := range wrappedLines {
		lineWidth := runewidth.StringWidth(line)
		paddingRight := contentWidth - lineWidth

		if paddingRight < 0 {
			paddingRight = 0
		}

		builder.WriteString(fmt.Sprintf("║ %s%s ║\n", line, strings.Repeat(" ", paddingRight)))
	}

	builder.WriteString("╚" + strings.Repeat("═", width-2) + "╝\n")

	return builder.String()
}

func Banner() {
	message1 := "🗺  Maps Scraper"
	message2 := "Scrapes Google Maps business listings and serves them over a JSON API."

	fmt.Fprintln(os.Stderr, banner([]string{message1, message2}, 0))
}
