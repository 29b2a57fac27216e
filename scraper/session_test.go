package scraper

import (
	"errors"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

type fakeConsentButton struct {
	clicks int
	err    error
}

func (b *fakeConsentButton) Click(_ ...playwright.ElementHandleClickOptions) error {
	b.clicks++

	return b.err
}

func TestDismissBanner_SwallowsClickFailure(t *testing.T) {
	t.Parallel()

	// A button that detaches mid-click must not abort anything.
	btn := &fakeConsentButton{err: errors.New("element is not attached to the DOM")}

	dismissBanner(btn)

	require.Equal(t, 1, btn.clicks)
}

func TestDismissBanner_ClicksOnce(t *testing.T) {
	t.Parallel()

	btn := &fakeConsentButton{}

	dismissBanner(btn)

	require.Equal(t, 1, btn.clicks)
}
