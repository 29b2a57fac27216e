package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeProbe replays a scripted sequence of feed sizes.
type fakeProbe struct {
	counts  []int
	calls   int
	scrolls int
	scrollE error
}

func (p *fakeProbe) count() (int, error) {
	idx := p.calls
	if idx >= len(p.counts) {
		idx = len(p.counts) - 1
	}
	p.calls++

	return p.counts[idx], nil
}

func (p *fakeProbe) scrollToBottom() error {
	p.scrolls++

	return p.scrollE
}

func fastOpts() Options {
	opts := DefaultOptions()
	opts.ScrollSettle = time.Millisecond
	opts.StallLimit = 3

	return opts
}

func TestLoadFeed_StopsAtTarget(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{counts: []int{5, 12, 25}}

	n, err := loadFeed(context.Background(), probe, 20, fastOpts())
	require.NoError(t, err)
	require.Equal(t, 25, n)
	require.Equal(t, 2, probe.scrolls)
}

func TestLoadFeed_StallsOnShortResultSet(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{counts: []int{7}}

	n, err := loadFeed(context.Background(), probe, 50, fastOpts())
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, 3, probe.scrolls)
}

func TestLoadFeed_AttemptBudget(t *testing.T) {
	t.Parallel()

	// Grows by one forever, so only the attempt budget stops it.
	counts := make([]int, 100)
	for i := range counts {
		counts[i] = i + 1
	}

	opts := fastOpts()
	opts.FeedAttempts = 10
	opts.StallLimit = 50

	probe := &fakeProbe{counts: counts}

	n, err := loadFeed(context.Background(), probe, 1000, opts)
	require.NoError(t, err)
	require.Equal(t, 11, n)
	require.Equal(t, 10, probe.scrolls)
}

func TestLoadFeed_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe := &fakeProbe{counts: []int{3}}

	n, err := loadFeed(ctx, probe, 50, fastOpts())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 3, n)
}

func TestLoadFeed_ScrollError(t *testing.T) {
	t.Parallel()

	probe := &fakeProbe{counts: []int{3}, scrollE: errors.New("detached frame")}

	_, err := loadFeed(context.Background(), probe, 50, fastOpts())
	require.Error(t, err)
}
