package main

import (
	"context"
	"os"

	"github.com/go-faster/errors"

	"github.com/xenking/tapsilat-checkout/internal/domain/webhook"
	"github.com/xenking/tapsilat-checkout/internal/storage/file"
	"github.com/xenking/tapsilat-checkout/internal/storage/postgres"
)

type storeOptions struct {
	Backend     string
	Dir         string
	DatabaseURL string
}

// prunableStore is a webhook store that can delete entries.
type prunableStore interface {
	webhook.Store
	webhook.Pruner
}

// open returns the configured store and a release func.
func (o *storeOptions) open(ctx context.Context) (prunableStore, func(), error) {
	switch o.Backend {
	case "file":
		s, err := file.NewWebhookStore(o.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "postgres":
		url := o.DatabaseURL
		if url == "" {
			url = os.Getenv("DATABASE_URL")
		}
		if url == "" {
			return nil, nil, errors.New("database URL is required: set --database-url or DATABASE_URL")
		}
		pool, err := postgres.NewPool(ctx, url)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect to database")
		}
		return postgres.NewWebhookStore(pool), pool.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown backend %q", o.Backend)
	}
}
