package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapText(t *testing.T) {
	t.Parallel()

	lines := wrapText("abcdefghij", 4)
	require.Equal(t, []string{"abcd", "efgh", "ij"}, lines)

	require.Empty(t, wrapText("", 10))
}

func TestBannerFitsWidth(t *testing.T) {
	t.Parallel()

	out := banner([]string{"hello", "a somewhat longer message that needs wrapping"}, 24)

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		require.True(t, strings.HasPrefix(line, "╔") || strings.HasPrefix(line, "║") || strings.HasPrefix(line, "╚"))
	}
}

func TestScraperOptions(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Debug:    true,
		LangCode: "de",
		Email:    true,
	}

	opts := cfg.ScraperOptions()
	require.False(t, opts.Headless)
	require.Equal(t, "de", opts.LangCode)
	require.True(t, opts.ExtractEmail)
}
