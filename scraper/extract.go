package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	olc "github.com/google/open-location-code/go"
)

// extractRecord pulls every business field out of a rendered detail pane.
// It is a pure function over the document so the whole field matrix is
// testable against saved HTML, without a browser.
//
// Each field tries an ordered list of markers. Google reshuffles class
// names often, so structural attributes (data-item-id, aria-label) come
// first and styling classes are the fallback. A field whose markers all
// miss stays at its zero value, never an error.
func extractRecord(doc *goquery.Document) Record {
	var rec Record

	rec.Name = firstText(doc,
		`h1.DUwDvf`,
		`div[role="main"] h1`,
	)

	rec.Address = firstMarkerText(doc,
		`button[data-item-id="address"]`,
		`*[data-item-id*="address"]`,
		`button[aria-label^="Address"]`,
	)
	rec.Address = strings.TrimPrefix(rec.Address, "Address: ")

	rec.Phone = extractPhone(doc)
	rec.Website = extractWebsite(doc)

	rec.Rating = firstText(doc,
		`div.F7nice span[aria-hidden="true"]`,
		`span.MW4etd`,
	)
	if rec.Rating == "" {
		if label, ok := doc.Find(`div[role="main"] span[role="img"]`).First().Attr("aria-label"); ok {
			rec.Rating = ratingFromLabel(label)
		}
	}

	rec.Reviews = extractReviewCount(doc)

	rec.Description = firstText(doc,
		`div.PYvSYb`,
		`div[data-attrid="description"]`,
		`h2.bwoZTb+div`,
	)

	rec.PlusCode = extractPlusCode(doc)

	return rec
}

// firstText returns the trimmed text of the first selector that matches a
// non-empty node.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if txt := strings.TrimSpace(doc.Find(sel).First().Text()); txt != "" {
			return txt
		}
	}

	return ""
}

// firstMarkerText is firstText plus the aria-label fallback: detail rows
// often carry the value only in the label ("Address: 1 Main St").
func firstMarkerText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}

		if txt := strings.TrimSpace(node.Text()); txt != "" {
			return txt
		}

		if label, ok := node.Attr("aria-label"); ok {
			if _, val, found := strings.Cut(label, ": "); found {
				return strings.TrimSpace(val)
			}

			return strings.TrimSpace(label)
		}
	}

	return ""
}

func extractPhone(doc *goquery.Document) string {
	phone := firstMarkerText(doc,
		`button[data-item-id^="phone:tel"]`,
		`button[aria-label^="Phone"]`,
	)
	if phone != "" {
		return phone
	}

	if href, ok := doc.Find(`a[href^="tel:"]`).First().Attr("href"); ok {
		return strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
	}

	return ""
}

func extractWebsite(doc *goquery.Document) string {
	selectors := []string{
		`a[data-item-id="authority"]`,
		`a[data-item-id="website"]`,
		`a[aria-label^="Website"]`,
	}

	for _, sel := range selectors {
		href, ok := doc.Find(sel).First().Attr("href")
		if !ok || href == "" {
			continue
		}

		return websiteFromHref(href)
	}

	return ""
}

// websiteFromHref unwraps Google redirect and tracking wrappers so callers
// get the business's own URL. Handles the /url?q= wrapper and any href that
// embeds a second absolute URL in its query string.
func websiteFromHref(href string) string {
	if u, err := url.Parse(href); err == nil {
		if strings.Contains(u.Host, "google.") && u.Path == "/url" {
			if q := u.Query().Get("q"); q != "" {
				return q
			}
		}
	}

	// A second http(s):// occurrence means the real target is embedded.
	if idx := embeddedURLIndex(href); idx > 0 {
		embedded := href[idx:]
		if cut := strings.IndexByte(embedded, '&'); cut >= 0 {
			embedded = embedded[:cut]
		}

		if unescaped, err := url.QueryUnescape(embedded); err == nil {
			return unescaped
		}

		return embedded
	}

	return href
}

func embeddedURLIndex(href string) int {
	for _, scheme := range []string{"https://", "http://"} {
		if idx := strings.Index(href[1:], scheme); idx >= 0 {
			return idx + 1
		}
	}

	return -1
}

var reviewCountRe = regexp.MustCompile(`([\d.,\x{00a0} ]+)`)

// extractReviewCount reads the review total from the accessible label next
// to the rating ("1,234 reviews"). Absent or unparsable labels yield 0.
func extractReviewCount(doc *goquery.Document) int {
	labels := []string{
		firstText(doc, `div.F7nice span span[aria-label]`),
		firstAttr(doc, `button[aria-label$="reviews"]`, "aria-label"),
		firstAttr(doc, `span[aria-label$="reviews"]`, "aria-label"),
	}

	for _, label := range labels {
		if label == "" {
			continue
		}

		if n := parseReviewCount(label); n > 0 {
			return n
		}
	}

	return 0
}

func parseReviewCount(label string) int {
	match := reviewCountRe.FindString(label)
	if match == "" {
		return 0
	}

	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', ' ', ' ':
			return -1
		}

		return r
	}, match)

	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}

	return n
}

func ratingFromLabel(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}

	if _, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64); err != nil {
		return ""
	}

	return fields[0]
}

func firstAttr(doc *goquery.Document, sel, attr string) string {
	val, _ := doc.Find(sel).First().Attr(attr)

	return strings.TrimSpace(val)
}

// extractPlusCode returns the listing's plus code, validated so that
// arbitrary text grabbed from a reshuffled layout never leaks into the
// field. Compound codes ("9G8F+6X Zurich") validate on the code part only.
func extractPlusCode(doc *goquery.Document) string {
	raw := firstMarkerText(doc,
		`button[data-item-id="oloc"]`,
		`*[data-item-id="oloc"]`,
		`button[aria-label^="Plus code"]`,
	)
	raw = strings.TrimPrefix(raw, "Plus code: ")
	if raw == "" {
		return ""
	}

	code, _, _ := strings.Cut(raw, " ")
	if err := olc.Check(code); err != nil {
		return ""
	}

	return raw
}
