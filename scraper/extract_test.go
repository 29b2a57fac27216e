package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const listingHTML = `
<html><body>
<div role="main">
  <h1 class="DUwDvf">Acme Coffee Roasters</h1>
  <div class="F7nice">
    <span><span aria-hidden="true">4.6</span></span>
    <span><span aria-label="1,234 reviews">(1,234)</span></span>
  </div>
  <div class="PYvSYb">Small batch roastery and espresso bar.</div>
  <button data-item-id="address" aria-label="Address: 1 Main St, Springfield">
    <div>1 Main St, Springfield</div>
  </button>
  <a data-item-id="authority" href="https://track.example/redirect?u=https://acme.test/">acme.test</a>
  <button data-item-id="phone:tel:+15550100" aria-label="Phone: (555) 010-0000">
    <div>(555) 010-0000</div>
  </button>
  <button data-item-id="oloc" aria-label="Plus code: 8FVC9G8F+6X Springfield">
    <div>8FVC9G8F+6X Springfield</div>
  </button>
</div>
</body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	return doc
}

func TestExtractRecord_FullListing(t *testing.T) {
	t.Parallel()

	rec := extractRecord(mustDoc(t, listingHTML))

	require.Equal(t, "Acme Coffee Roasters", rec.Name)
	require.Equal(t, "1 Main St, Springfield", rec.Address)
	require.Equal(t, "(555) 010-0000", rec.Phone)
	require.Equal(t, "https://acme.test/", rec.Website)
	require.Equal(t, "4.6", rec.Rating)
	require.Equal(t, 1234, rec.Reviews)
	require.Equal(t, "Small batch roastery and espresso bar.", rec.Description)
	require.Equal(t, "8FVC9G8F+6X Springfield", rec.PlusCode)
}

func TestExtractRecord_EmptyDocument(t *testing.T) {
	t.Parallel()

	rec := extractRecord(mustDoc(t, `<html><body></body></html>`))

	require.Equal(t, Record{}, rec)
}

func TestExtractRecord_PhoneFromTelHref(t *testing.T) {
	t.Parallel()

	rec := extractRecord(mustDoc(t, `<html><body>
		<h1 class="DUwDvf">Plumber</h1>
		<a href="tel:+15550123">call us</a>
	</body></html>`))

	require.Equal(t, "+15550123", rec.Phone)
}

func TestExtractRecord_InvalidPlusCodeDropped(t *testing.T) {
	t.Parallel()

	rec := extractRecord(mustDoc(t, `<html><body>
		<h1 class="DUwDvf">Bakery</h1>
		<button data-item-id="oloc"><div>ZZZZ+99 Nowhere</div></button>
	</body></html>`))

	require.Empty(t, rec.PlusCode)
}

func TestExtractRecord_RatingFromAriaLabel(t *testing.T) {
	t.Parallel()

	rec := extractRecord(mustDoc(t, `<html><body><div role="main">
		<h1>Diner</h1>
		<span role="img" aria-label="4.2 stars"></span>
	</div></body></html>`))

	require.Equal(t, "Diner", rec.Name)
	require.Equal(t, "4.2", rec.Rating)
}

func TestWebsiteFromHref(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		href string
		want string
	}{
		{
			name: "plain",
			href: "https://acme.test/",
			want: "https://acme.test/",
		},
		{
			name: "google url wrapper",
			href: "https://www.google.com/url?q=https://biz.example/&sa=D",
			want: "https://biz.example/",
		},
		{
			name: "tracking wrapper",
			href: "https://track.example/redirect?u=https://acme.test/",
			want: "https://acme.test/",
		},
		{
			name: "tracking wrapper with trailing params",
			href: "https://track.example/r?u=https://acme.test/shop&cid=7",
			want: "https://acme.test/shop",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, websiteFromHref(tc.href))
		})
	}
}

func TestParseReviewCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label string
		want  int
	}{
		{"1,234 reviews", 1234},
		{"(567)", 567},
		{"12.345 Rezensionen", 12345},
		{"1 234 reviews", 1234},
		{"", 0},
		{"no digits here", 0},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, parseReviewCount(tc.label), "label %q", tc.label)
	}
}
