package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned HTML keyed by URL.
type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (string, string, error) {
	f.fetched = append(f.fetched, pageURL)

	html, ok := f.pages[pageURL]
	if !ok {
		return "", "", errors.New("connection refused")
	}

	return html, pageURL, nil
}

func TestResolver_MailtoOnHomepage(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{
		"https://realbiz.com": `<html><body>
			<a href="mailto:sales@realbiz.com?subject=hi">Email us</a>
		</body></html>`,
	}}

	r := NewResolver(fetcher)
	require.Equal(t, "sales@realbiz.com", r.Resolve(context.Background(), "realbiz.com"))
	require.Len(t, fetcher.fetched, 1)
}

func TestResolver_FallsBackToContactPage(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{
		"https://realbiz.de": `<html><body>
			<p>Schreiben Sie an example@example.com</p>
			<a href="/kontakt">Kontakt</a>
		</body></html>`,
		"https://realbiz.de/kontakt": `<html><body>
			<p>E-Mail: info@realbiz.de</p>
		</body></html>`,
	}}

	r := NewResolver(fetcher)
	require.Equal(t, "info@realbiz.de", r.Resolve(context.Background(), "https://realbiz.de"))
	require.Equal(t, []string{"https://realbiz.de", "https://realbiz.de/kontakt"}, fetcher.fetched)
}

func TestResolver_NoContactLink(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{
		"https://realbiz.com": `<html><body><p>nothing to see</p></body></html>`,
	}}

	r := NewResolver(fetcher)
	require.Empty(t, r.Resolve(context.Background(), "https://realbiz.com"))
	require.Len(t, fetcher.fetched, 1)
}

func TestResolver_FetchErrorYieldsEmpty(t *testing.T) {
	t.Parallel()

	r := NewResolver(&fakeFetcher{pages: map[string]string{}})
	require.Empty(t, r.Resolve(context.Background(), "https://down.example"))
}

func TestResolver_EmptyWebsite(t *testing.T) {
	t.Parallel()

	r := NewResolver(&fakeFetcher{pages: map[string]string{}})
	require.Empty(t, r.Resolve(context.Background(), "   "))
}

func TestResolver_IgnoresOffsiteContactLinks(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{
		"https://realbiz.com": `<html><body>
			<a href="https://facebook.com/realbiz">Contact us on Facebook</a>
		</body></html>`,
	}}

	r := NewResolver(fetcher)
	require.Empty(t, r.Resolve(context.Background(), "https://realbiz.com"))
	require.Len(t, fetcher.fetched, 1)
}

func TestIsLikelyRealEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		email string
		want  bool
	}{
		{"sales@realbiz.com", true},
		{"info@kaffee-haus.de", true},
		{"example@example.com", false},
		{"user@example.org", false},
		{"noreply@realbiz.com", false},
		{"icon@2x.png", false},
		{"deadbeefdeadbeef@realbiz.com", false},
		{"someone@sentry.io", false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, isLikelyRealEmail(tc.email), "email %q", tc.email)
	}
}

func TestEnsureScheme(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://acme.test", ensureScheme("acme.test"))
	require.Equal(t, "http://acme.test", ensureScheme("http://acme.test"))
	require.Empty(t, ensureScheme(""))
}
