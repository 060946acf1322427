package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/tapsilat-checkout/internal/domain/webhook"
)

const (
	insertWebhookSQL = `INSERT INTO webhook_events (filename, type, received_at, payload)
		VALUES ($1, $2, $3, $4)`

	listWebhooksSQL = `SELECT filename, type, received_at, payload
		FROM webhook_events ORDER BY filename DESC`

	deleteWebhooksSQL = `DELETE FROM webhook_events WHERE filename = ANY($1)`
)

var (
	_ webhook.Store  = (*WebhookStore)(nil)
	_ webhook.Pruner = (*WebhookStore)(nil)
)

// WebhookStore implements webhook.Store backed by PostgreSQL. Each callback
// is one row keyed by its generated filename.
type WebhookStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewWebhookStore returns a WebhookStore that uses the given pool.
func NewWebhookStore(pool *pgxpool.Pool) *WebhookStore {
	return &WebhookStore{pool: pool, now: time.Now}
}

// Append inserts one callback body. The body is stored as bytes, so NUL
// bytes and invalid UTF-8 are kept verbatim.
func (s *WebhookStore) Append(ctx context.Context, t webhook.Type, raw []byte) (string, error) {
	now := s.now().UTC()
	name := webhook.NewFilename(now, t)
	if _, err := s.pool.Exec(ctx, insertWebhookSQL, name, string(t), now, raw); err != nil {
		return "", fmt.Errorf("inserting webhook %q: %w", name, err)
	}
	return name, nil
}

// List returns all callbacks, newest first.
func (s *WebhookStore) List(ctx context.Context) ([]webhook.Entry, error) {
	rows, err := s.pool.Query(ctx, listWebhooksSQL)
	if err != nil {
		return nil, fmt.Errorf("listing webhooks: %w", err)
	}

	entries, err := pgx.CollectRows(rows, scanWebhook)
	if err != nil {
		return nil, fmt.Errorf("listing webhooks: %w", err)
	}
	return entries, nil
}

// Remove deletes the named callbacks.
func (s *WebhookStore) Remove(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, deleteWebhooksSQL, names); err != nil {
		return fmt.Errorf("deleting %d webhooks: %w", len(names), err)
	}
	return nil
}

func scanWebhook(row pgx.CollectableRow) (webhook.Entry, error) {
	var (
		e       webhook.Entry
		typ     string
		payload []byte
	)
	if err := row.Scan(&e.Filename, &typ, &e.ReceivedAt, &payload); err != nil {
		return e, err
	}
	e.Type = webhook.Type(typ)
	e.ReceivedAt = e.ReceivedAt.UTC()
	e.Raw = string(payload)
	e.Content = webhook.ContentOf(payload)
	return e, nil
}
