// Package scraper drives a real Chromium instance against Google Maps and
// turns search result listings into structured business records.
package scraper

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// Scraper runs search requests. It is safe for concurrent use: every Run
// launches its own browser and shares nothing with other runs.
type Scraper struct {
	opts Options
}

func New(opts Options) *Scraper {
	return &Scraper{opts: opts.normalized()}
}

// Run scrapes up to maxResults listings for query. It returns the records
// collected so far even on a fatal error, so callers can serve partial
// results. Individual listings that fail to open or parse are skipped and
// never fail the run.
func (s *Scraper) Run(ctx context.Context, query string, maxResults int) ([]Record, error) {
	req := NewSearchRequest(query, maxResults)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sess, err := newSession(s.opts)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	page := sess.page

	searchURL := searchURL(req.Query, s.opts.LangCode)

	log.Printf("scrape %q: navigating to %s", req.Query, searchURL)

	if _, err := page.Goto(searchURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.opts.NavTimeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("failed to navigate to search URL: %w", err)
	}

	clickRejectCookiesIfRequired(page)

	if onConsentPage(page) {
		handleConsentPage(page)

		if _, err := page.Goto(searchURL, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(s.opts.NavTimeout.Milliseconds())),
		}); err != nil {
			return nil, fmt.Errorf("failed to navigate after consent: %w", err)
		}

		clickRejectCookiesIfRequired(page)
	}

	var resolver *Resolver
	if s.opts.ExtractEmail {
		resolver = NewResolver(newBrowserFetcher(sess.browser, s.opts))
	}

	//nolint:staticcheck // TODO replace with the new playwright API
	if _, err := page.WaitForSelector(feedSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(s.opts.FeedTimeout.Milliseconds())),
	}); err != nil {
		// Unambiguous queries skip the feed and land straight on the
		// place page.
		if strings.Contains(page.URL(), "/maps/place/") {
			return s.scrapeSinglePlace(ctx, page, resolver)
		}

		return nil, fmt.Errorf("results feed did not appear: %w", err)
	}

	available, err := loadFeed(ctx, &pageFeed{page: page}, req.Max, s.opts)
	if err != nil {
		return nil, err
	}

	if available > req.Max {
		available = req.Max
	}

	log.Printf("scrape %q: %d listings to visit", req.Query, available)

	visitor := &pageVisitor{page: page, opts: s.opts, query: req.Query}

	records, err := collectRecords(ctx, visitor, available, resolver)
	if err != nil {
		return records, err
	}

	log.Printf("scrape %q: collected %d records", req.Query, len(records))

	return records, nil
}

// scrapeSinglePlace handles the redirect case where Maps resolved the query
// directly to one business.
func (s *Scraper) scrapeSinglePlace(ctx context.Context, page playwright.Page, resolver *Resolver) ([]Record, error) {
	//nolint:staticcheck // TODO replace with the new playwright API
	if _, err := page.WaitForSelector(detailPaneSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(s.opts.ListingTimeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("place pane did not appear: %w", err)
	}

	rec, ok := snapshotRecord(page)
	if !ok || rec.Name == "" {
		return []Record{}, nil
	}

	if resolver != nil && rec.Website != "" {
		rec.Email = resolver.Resolve(ctx, rec.Website)
	}

	return []Record{rec}, nil
}

// snapshotRecord serializes the current page into a goquery document and
// extracts a record from it.
func snapshotRecord(page playwright.Page) (Record, bool) {
	body, err := page.Content()
	if err != nil {
		return Record{}, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Record{}, false
	}

	return extractRecord(doc), true
}

func searchURL(query, langCode string) string {
	return fmt.Sprintf("https://www.google.com/maps/search/%s?hl=%s",
		url.PathEscape(query), url.QueryEscape(langCode))
}
