// Package archive bundles stored webhooks into gzip compressed JSON lines.
package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"runtime"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/tapsilat-checkout/internal/domain/webhook"
)

// Extension is the file extension of archives.
const Extension = ".jsonl.gz"

const maxLine = 16 << 20

// Write encodes entries as one JSON document per line into a gzip stream on
// w. Encoding and compression run concurrently. It returns the number of
// entries written.
func Write(ctx context.Context, w io.Writer, entries []webhook.Entry) (int, error) {
	gz := pgzip.NewWriter(w)
	if err := gz.SetConcurrency(1<<20, runtime.GOMAXPROCS(0)); err != nil {
		return 0, errors.Wrap(err, "configure gzip")
	}

	lines := make(chan []byte, 64)
	written := 0

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(lines)
		for i := range entries {
			line, err := json.Marshal(&entries[i])
			if err != nil {
				return errors.Wrapf(err, "encode %s", entries[i].Filename)
			}
			select {
			case lines <- append(line, '\n'):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	g.Go(func() error {
		for line := range lines {
			if _, err := gz.Write(line); err != nil {
				return errors.Wrap(err, "write")
			}
			written++
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		_ = gz.Close()
		return written, err
	}
	if err := gz.Close(); err != nil {
		return written, errors.Wrap(err, "flush gzip")
	}
	return written, nil
}

// Read decodes an archive produced by Write.
func Read(ctx context.Context, r io.Reader) ([]webhook.Entry, error) {
	gz, err := pgzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open gzip")
	}
	defer func() { _ = gz.Close() }()

	var entries []webhook.Entry
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64<<10), maxLine)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var e webhook.Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, errors.Wrapf(err, "decode line %d", len(entries)+1)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	return entries, nil
}
