package scraper

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

const (
	feedSelector     = `div[role='feed']`
	feedLinkSelector = `div[role='feed'] a[href*="/maps/place/"]`
)

// feedProbe abstracts the results feed so the loading loop can be tested
// without a browser.
type feedProbe interface {
	count() (int, error)
	scrollToBottom() error
}

// pageFeed is the playwright backed probe used in production.
type pageFeed struct {
	page playwright.Page
}

func (f *pageFeed) count() (int, error) {
	els, err := f.page.QuerySelectorAll(feedLinkSelector)
	if err != nil {
		return 0, fmt.Errorf("could not query feed links: %w", err)
	}

	return len(els), nil
}

func (f *pageFeed) scrollToBottom() error {
	js := fmt.Sprintf(`() => {
		const el = document.querySelector(%q);
		if (el) { el.scrollTop = el.scrollHeight; }
	}`, feedSelector)

	_, err := f.page.Evaluate(js)

	return err
}

// loadFeed scrolls the results feed until target listings are visible, the
// feed stops growing, or the attempt budget runs out. It returns the number
// of listings available when it stopped.
//
// Google renders results lazily, so growth is detected by re-counting after
// each scroll. A feed that reports the same count stallLimit times in a row
// is treated as exhausted: short result sets never spin for the full budget.
func loadFeed(ctx context.Context, probe feedProbe, target int, opts Options) (int, error) {
	opts = opts.normalized()

	seen, err := probe.count()
	if err != nil {
		return 0, err
	}

	stable := 0

	for attempt := 0; attempt < opts.FeedAttempts; attempt++ {
		if seen >= target {
			return seen, nil
		}

		if err := ctx.Err(); err != nil {
			return seen, err
		}

		if err := probe.scrollToBottom(); err != nil {
			return seen, fmt.Errorf("could not scroll feed: %w", err)
		}

		ctxWait(ctx, opts.ScrollSettle)

		next, err := probe.count()
		if err != nil {
			return seen, err
		}

		if next == seen {
			stable++
			if stable >= opts.StallLimit {
				return seen, nil
			}
		} else {
			stable = 0
		}

		seen = next
	}

	return seen, nil
}
