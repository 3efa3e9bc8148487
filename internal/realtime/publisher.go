package realtime

import (
	"context"
	"errors"
	"fmt"
)

// Publisher delivers one event to one audience. Delivery is at-most-once.
type Publisher interface {
	Publish(ctx context.Context, audience Audience, event string, payload any) error
}

// NopPublisher drops everything.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Audience, string, any) error { return nil }

// Transport is a Publisher with a name used in failure metrics.
type Transport struct {
	Name string
	Publisher
}

// MultiPublisher fans every event out to all transports and joins their errors.
type MultiPublisher []Transport

func (m MultiPublisher) Publish(ctx context.Context, audience Audience, event string, payload any) error {
	var errs []error
	for _, t := range m {
		if t.Publisher == nil {
			continue
		}
		if err := t.Publish(ctx, audience, event, payload); err != nil {
			RecordFailure(t.Name)
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
		}
	}
	return errors.Join(errs...)
}
