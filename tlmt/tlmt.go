// Package tlmt defines the anonymous usage telemetry contract.
package tlmt

import "context"

// Event is a single telemetry datapoint.
type Event struct {
	Name  string
	Value map[string]any
}

func NewEvent(name string, value map[string]any) *Event {
	return &Event{
		Name:  name,
		Value: value,
	}
}

type Telemetry interface {
	Send(ctx context.Context, event *Event) error
	Close() error
}
