package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mcnijman/go-emailaddress"
	"github.com/playwright-community/playwright-go"
)

// Cap per page to avoid false positives on pages that embed address books.
const maxEmailsPerPage = 50

// Fetcher retrieves one page of HTML. The browser backed implementation is
// used in production; tests supply a map backed fake.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (html, finalURL string, err error)
}

// browserFetcher loads pages through an isolated browser context so the
// business site never shares cookies or storage with the Maps session.
type browserFetcher struct {
	browser playwright.Browser
	timeout float64 // milliseconds
}

func newBrowserFetcher(browser playwright.Browser, opts Options) *browserFetcher {
	return &browserFetcher{
		browser: browser,
		timeout: float64(opts.EmailTimeout.Milliseconds()),
	}
}

func (f *browserFetcher) Fetch(ctx context.Context, pageURL string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	bctx, err := f.browser.NewContext()
	if err != nil {
		return "", "", fmt.Errorf("could not create browser context: %w", err)
	}
	defer bctx.Close() //nolint:errcheck

	page, err := bctx.NewPage()
	if err != nil {
		return "", "", fmt.Errorf("could not open page: %w", err)
	}

	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(f.timeout),
	}); err != nil {
		return "", "", err
	}

	body, err := page.Content()
	if err != nil {
		return "", "", err
	}

	return body, page.URL(), nil
}

// Resolver finds a contact email for a business website. Best effort by
// contract: every failure path yields an empty string, never an error that
// could sink the rest of a scrape.
type Resolver struct {
	fetcher Fetcher
}

func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve fetches the site's homepage and scans it for an email address.
// When the homepage has none it follows a single contact-looking link and
// scans that page too. At most two navigations per business.
func (r *Resolver) Resolve(ctx context.Context, website string) string {
	website = ensureScheme(website)
	if website == "" {
		return ""
	}

	body, finalURL, err := r.fetcher.Fetch(ctx, website)
	if err != nil {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	if emails := docEmailExtractor(doc); len(emails) > 0 {
		return emails[0]
	}

	if emails := regexEmailExtractor([]byte(body)); len(emails) > 0 {
		return emails[0]
	}

	contact := contactPageURL(doc, finalURL)
	if contact == "" {
		return ""
	}

	body, _, err = r.fetcher.Fetch(ctx, contact)
	if err != nil {
		return ""
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
		if emails := docEmailExtractor(doc); len(emails) > 0 {
			return emails[0]
		}
	}

	if emails := regexEmailExtractor([]byte(body)); len(emails) > 0 {
		return emails[0]
	}

	return ""
}

func ensureScheme(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}

	if strings.HasPrefix(website, "http://") || strings.HasPrefix(website, "https://") {
		return website
	}

	return "https://" + website
}

// contactPageKeywords cover the anchor texts and paths small business sites
// use for their contact page, in English and German.
var contactPageKeywords = []string{
	"contact", "kontakt", "impressum", "about", "support", "team",
}

// contactPageURL returns the first same-site link that looks like a contact
// page, resolved against the page it was found on.
func contactPageURL(doc *goquery.Document, base string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}

	var found string

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		lowerHref := strings.ToLower(href)

		match := false

		for _, kw := range contactPageKeywords {
			if strings.Contains(text, kw) || strings.Contains(lowerHref, kw) {
				match = true
				break
			}
		}

		if !match {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}

		resolved := baseURL.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return true
		}

		if resolved.Host != baseURL.Host {
			return true
		}

		found = resolved.String()

		return false
	})

	return found
}

func docEmailExtractor(doc *goquery.Document) []string {
	seen := map[string]bool{}

	var emails []string

	doc.Find("a[href^='mailto:']").Each(func(_ int, s *goquery.Selection) {
		if len(emails) >= maxEmailsPerPage {
			return
		}
		mailto, exists := s.Attr("href")
		if exists {
			value := strings.TrimPrefix(mailto, "mailto:")
			if cut := strings.IndexByte(value, '?'); cut >= 0 {
				value = value[:cut]
			}
			if email, err := getValidEmail(value); err == nil {
				if !seen[email] && isLikelyRealEmail(email) {
					emails = append(emails, email)
					seen[email] = true
				}
			}
		}
	})

	return emails
}

func regexEmailExtractor(body []byte) []string {
	seen := map[string]bool{}

	var emails []string

	addresses := emailaddress.Find(body, false)
	for i := range addresses {
		if len(emails) >= maxEmailsPerPage {
			break
		}
		email := addresses[i].String()
		if !seen[email] && isLikelyRealEmail(email) {
			emails = append(emails, email)
			seen[email] = true
		}
	}

	return emails
}

// isLikelyRealEmail filters out common false positive email patterns
func isLikelyRealEmail(email string) bool {
	email = strings.ToLower(email)

	falsePositivePatterns := []string{
		"@example.",
		"example@",
		"@test.com",
		"@localhost",
		"@sentry.io",
		"@wixpress.com",
		"@email.com",
		"@domain.com",
		"@yourdomain",
		"@placeholder",
		"noreply@",
		"no-reply@",
		"donotreply@",
		"mailer-daemon@",
		"postmaster@",
		"@2x.", // image naming convention (icon@2x.png)
		"@3x.",
		".png",
		".jpg",
		".gif",
		".svg",
		".webp",
	}

	for _, pattern := range falsePositivePatterns {
		if strings.Contains(email, pattern) {
			return false
		}
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}

	localPart := parts[0]
	// very long local parts are usually hashes or encoded data
	if len(localPart) > 64 {
		return false
	}

	if isHexString(localPart) && len(localPart) > 8 {
		return false
	}

	return true
}

func isHexString(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func getValidEmail(s string) (string, error) {
	email, err := emailaddress.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}

	return email.String(), nil
}
