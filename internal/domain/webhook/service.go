package webhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Service stores incoming callbacks and publishes them to the broker.
type Service struct {
	store  Store
	broker *Broker
	now    func() time.Time
}

// NewService creates a webhook Service. broker may be nil.
func NewService(store Store, broker *Broker) *Service {
	return &Service{
		store:  store,
		broker: broker,
		now:    time.Now,
	}
}

// Receive persists one callback body and notifies live listeners.
func (s *Service) Receive(ctx context.Context, t Type, raw []byte) (*Entry, error) {
	receivedAt := s.now()
	name, err := s.store.Append(ctx, t, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "store %s webhook", t)
	}

	e := &Entry{
		Filename:   name,
		Type:       t,
		ReceivedAt: receivedAt.UTC(),
		Content:    ContentOf(raw),
		Raw:        string(raw),
	}
	if s.broker != nil {
		s.broker.Publish(*e)
	}
	return e, nil
}

// List returns stored callbacks, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list webhooks")
	}
	return entries, nil
}

// ContentOf returns raw as a JSON value when it is valid JSON, or null.
func ContentOf(raw []byte) json.RawMessage {
	if len(raw) == 0 || !jx.Valid(raw) {
		return json.RawMessage("null")
	}
	return json.RawMessage(raw)
}
