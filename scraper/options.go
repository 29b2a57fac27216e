package scraper

import "time"

const (
	// DefaultMaxResults is used when a request does not specify max.
	DefaultMaxResults = 20
	// MaxResultsCeiling is the hard per-request cap enforced server side.
	MaxResultsCeiling = 50
)

// Options configures a Scraper. It replaces any notion of package level
// state: callers construct it once and pass it in.
type Options struct {
	Headless     bool
	LangCode     string
	ExtractEmail bool

	// Feed loading.
	FeedAttempts int           // upper bound on scroll-and-measure cycles
	StallLimit   int           // consecutive unchanged counts before giving up
	ScrollSettle time.Duration // wait after each scroll before re-measuring

	// Timeouts. Every browser suspend point is bounded so a request always
	// terminates, even against a hostile or dead-slow page.
	NavTimeout     time.Duration // initial search page navigation
	FeedTimeout    time.Duration // wait for the feed container to appear
	ListingTimeout time.Duration // wait for a detail pane to settle
	EmailTimeout   time.Duration // per navigation inside the email resolver
}

func DefaultOptions() Options {
	return Options{
		Headless:       true,
		LangCode:       "en",
		FeedAttempts:   30,
		StallLimit:     6,
		ScrollSettle:   time.Second,
		NavTimeout:     30 * time.Second,
		FeedTimeout:    10 * time.Second,
		ListingTimeout: 15 * time.Second,
		EmailTimeout:   20 * time.Second,
	}
}

// normalized fills zero values so a partially populated Options (e.g. from
// config) still yields bounded waits everywhere.
func (o Options) normalized() Options {
	def := DefaultOptions()

	if o.LangCode == "" {
		o.LangCode = def.LangCode
	}

	if o.FeedAttempts <= 0 {
		o.FeedAttempts = def.FeedAttempts
	}

	if o.StallLimit <= 0 {
		o.StallLimit = def.StallLimit
	}

	if o.ScrollSettle <= 0 {
		o.ScrollSettle = def.ScrollSettle
	}

	if o.NavTimeout <= 0 {
		o.NavTimeout = def.NavTimeout
	}

	if o.FeedTimeout <= 0 {
		o.FeedTimeout = def.FeedTimeout
	}

	if o.ListingTimeout <= 0 {
		o.ListingTimeout = def.ListingTimeout
	}

	if o.EmailTimeout <= 0 {
		o.EmailTimeout = def.EmailTimeout
	}

	return o
}
