// Package file implements the webhook store on a local directory, one JSON
// file per callback.
package file

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/tapsilat-checkout/internal/domain/webhook"
)

var (
	_ webhook.Store  = (*WebhookStore)(nil)
	_ webhook.Pruner = (*WebhookStore)(nil)
)

// WebhookStore writes each callback body verbatim to its own file. Files are
// written to a temporary name and renamed, so readers never see partial
// content.
type WebhookStore struct {
	dir string
	now func() time.Time
}

// NewWebhookStore creates the directory if needed and returns a store on it.
func NewWebhookStore(dir string) (*WebhookStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create webhook dir %q", dir)
	}
	return &WebhookStore{dir: dir, now: time.Now}, nil
}

// Dir returns the storage directory.
func (s *WebhookStore) Dir() string {
	return s.dir
}

// Append writes raw to a new file and returns its name.
func (s *WebhookStore) Append(ctx context.Context, t webhook.Type, raw []byte) (string, error) {
	name := webhook.NewFilename(s.now(), t)

	tmp, err := os.CreateTemp(s.dir, ".incoming-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return "", errors.Wrap(err, "write webhook")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "close webhook")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", errors.Wrap(err, "chmod webhook")
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", errors.Wrap(err, "rename webhook")
	}

	zctx.From(ctx).Debug("Webhook stored", zap.String("filename", name))
	return name, nil
}

// List reads every stored callback, newest first. Files that disappear or
// cannot be read are skipped.
func (s *WebhookStore) List(ctx context.Context) ([]webhook.Entry, error) {
	names, err := s.names()
	if err != nil {
		return nil, err
	}

	entries := make([]webhook.Entry, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			zctx.From(ctx).Warn("Skip unreadable webhook",
				zap.String("filename", name),
				zap.Error(err),
			)
			continue
		}
		e := webhook.Entry{
			Filename: name,
			Content:  webhook.ContentOf(raw),
			Raw:      string(raw),
		}
		if ts, t, ok := webhook.ParseFilename(name); ok {
			e.ReceivedAt = ts
			e.Type = t
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Remove deletes the named files. Missing files are ignored.
func (s *WebhookStore) Remove(_ context.Context, names ...string) error {
	for _, name := range names {
		if name != filepath.Base(name) {
			return errors.Errorf("invalid webhook name %q", name)
		}
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrapf(err, "remove %q", name)
		}
	}
	return nil
}

// names returns the stored .json file names in reverse lexical order.
func (s *WebhookStore) names() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read webhook dir")
	}

	var names []string
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	slices.Reverse(names)
	return names, nil
}
