package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// session owns one playwright driver, browser and page for a single scrape
// request. Requests never share browser state.
type session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
}

func newSession(opts Options) (*session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		pw.Stop() //nolint:errcheck // teardown on a failed launch
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(defaultUserAgent),
		Locale:    playwright.String(opts.LangCode),
	})
	if err != nil {
		browser.Close() //nolint:errcheck
		pw.Stop()       //nolint:errcheck
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()    //nolint:errcheck
		browser.Close() //nolint:errcheck
		pw.Stop()       //nolint:errcheck
		return nil, fmt.Errorf("could not open page: %w", err)
	}

	return &session{pw: pw, browser: browser, bctx: bctx, page: page}, nil
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Close tears the whole session down. Safe to call more than once.
func (s *session) Close() {
	if s.bctx != nil {
		s.bctx.Close() //nolint:errcheck
		s.bctx = nil
	}

	if s.browser != nil {
		s.browser.Close() //nolint:errcheck
		s.browser = nil
	}

	if s.pw != nil {
		s.pw.Stop() //nolint:errcheck
		s.pw = nil
	}
}

func clickRejectCookiesIfRequired(page playwright.Page) {
	// click the cookie reject button if exists
	sel := `form[action="https://consent.google.com/save"]:first-of-type button:first-of-type`

	const timeout = 500

	//nolint:staticcheck // TODO replace with the new playwright API
	el, err := page.WaitForSelector(sel, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(timeout),
	})
	if err != nil || el == nil {
		return
	}

	dismissBanner(el)
}

// consentButton is the slice of playwright.ElementHandle dismissBanner needs.
type consentButton interface {
	Click(options ...playwright.ElementHandleClickOptions) error
}

// dismissBanner clicks the consent button and swallows any failure. The
// banner re-renders under navigation, so a detached button is an ordinary
// outcome, not a reason to abort the scrape.
func dismissBanner(el consentButton) {
	if err := el.Click(); err != nil {
		log.Printf("cookie banner dismissal failed: %v", err)
	}
}

// handleConsentPage deals with the full-page interstitial Google sometimes
// redirects to instead of showing the inline banner.
func handleConsentPage(page playwright.Page) {
	labels := []string{
		`button[aria-label="Reject all"]`,
		`button[aria-label="Alle ablehnen"]`,
		`form[action*="consent"] button`,
	}

	for _, sel := range labels {
		//nolint:staticcheck // TODO replace with the new playwright API
		el, err := page.WaitForSelector(sel, playwright.PageWaitForSelectorOptions{
			Timeout: playwright.Float(1000),
		})
		if err != nil || el == nil {
			continue
		}

		if err := el.Click(); err == nil {
			return
		}
	}
}

func onConsentPage(page playwright.Page) bool {
	return strings.Contains(page.URL(), "consent.google.com")
}

func ctxWait(ctx context.Context, dur time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(dur):
	}
}

// Install downloads the playwright driver and browsers. Run once before the
// first scrape on a fresh machine.
func Install() error {
	return playwright.Install()
}
