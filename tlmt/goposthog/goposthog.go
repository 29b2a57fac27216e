// Package goposthog sends telemetry events to a PostHog instance.
package goposthog

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"

	"github.com/divyanshprajapati011/maps-scraper/tlmt"
)

var _ tlmt.Telemetry = (*service)(nil)

type service struct {
	client     posthog.Client
	distinctID string
	closeOnce  sync.Once
}

func New(apiKey, endpoint string) (tlmt.Telemetry, error) {
	if apiKey == "" {
		return nil, errors.New("missing api key")
	}

	client, err := posthog.NewWithConfig(apiKey, posthog.Config{
		Endpoint: endpoint,
	})
	if err != nil {
		return nil, err
	}

	ans := service{
		client:     client,
		distinctID: uuid.New().String(),
	}

	return &ans, nil
}

func (s *service) Send(_ context.Context, event *tlmt.Event) error {
	properties := posthog.NewProperties()
	for k, v := range event.Value {
		properties.Set(k, v)
	}

	return s.client.Enqueue(posthog.Capture{
		DistinctId: s.distinctID,
		Event:      event.Name,
		Properties: properties,
	})
}

func (s *service) Close() error {
	var err error

	s.closeOnce.Do(func() {
		err = s.client.Close()
	})

	return err
}
