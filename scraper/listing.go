package scraper

import (
	"context"
	"log"

	"github.com/playwright-community/playwright-go"
)

const detailPaneSelector = `h1.DUwDvf, div[role="main"] h1`

// openListing clicks the idx-th feed entry and waits for its detail pane.
// It re-queries the feed on every call because Google replaces the anchor
// nodes as the feed virtualizes; holding on to stale handles panics the
// driver. Returns false when the listing cannot be opened, which callers
// treat as skip-and-continue rather than a fatal error.
func openListing(page playwright.Page, idx int, opts Options) bool {
	els, err := page.QuerySelectorAll(feedLinkSelector)
	if err != nil {
		return false
	}

	if idx < 0 || idx >= len(els) {
		return false
	}

	if err := els[idx].Click(); err != nil {
		return false
	}

	//nolint:staticcheck // TODO replace with the new playwright API
	_, err = page.WaitForSelector(detailPaneSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(opts.ListingTimeout.Milliseconds())),
	})

	return err == nil
}

// listingVisitor abstracts opening a feed entry and snapshotting its detail
// pane, so the collection loop can be tested without a browser.
type listingVisitor interface {
	visit(idx int) (Record, bool)
}

// pageVisitor is the playwright backed visitor used in production.
type pageVisitor struct {
	page  playwright.Page
	opts  Options
	query string
}

func (v *pageVisitor) visit(idx int) (Record, bool) {
	if !openListing(v.page, idx, v.opts) {
		log.Printf("scrape %q: listing %d did not open, skipping", v.query, idx)
		return Record{}, false
	}

	return snapshotRecord(v.page)
}

// collectRecords visits count listings in order and appends one record per
// successful extraction. The feed occasionally repeats the entry the pane
// already shows, so a record whose non-empty name equals the previously
// accepted one is dropped; nameless records are dropped too. Failed visits
// skip their index and never fail the loop; only context cancellation stops
// it early, returning whatever was collected.
func collectRecords(ctx context.Context, visitor listingVisitor, count int, resolver *Resolver) ([]Record, error) {
	records := make([]Record, 0, count)
	lastName := ""

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		rec, ok := visitor.visit(i)
		if !ok {
			continue
		}

		if rec.Name == "" || rec.Name == lastName {
			continue
		}

		lastName = rec.Name

		if resolver != nil && rec.Website != "" {
			rec.Email = resolver.Resolve(ctx, rec.Website)
		}

		records = append(records, rec)
	}

	return records, nil
}
