// Package gonoop is a telemetry implementation that discards everything.
package gonoop

import (
	"context"

	"github.com/divyanshprajapati011/maps-scraper/tlmt"
)

var _ tlmt.Telemetry = (*noop)(nil)

type noop struct{}

func New() tlmt.Telemetry {
	return &noop{}
}

func (n *noop) Send(_ context.Context, _ *tlmt.Event) error {
	return nil
}

func (n *noop) Close() error {
	return nil
}
