package httpmiddleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Idempotency headers.
const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	IdempotentReplayedHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength  = 255
)

// IdempotencyStore claims idempotency keys and keeps completed responses.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
	Release(ctx context.Context, scope, key string) error
}

// Idempotency makes requests carrying an Idempotency-Key header safe to
// retry. The first request with a key runs and its response is stored; later
// requests with the same key get the stored response. A retry while the
// first request is still running gets 409. Server errors are not stored so
// the client can retry them. When the store fails the request runs as if no
// key was sent.
func Idempotency(store IdempotencyStore, scope string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLength || !validRequestID(key) {
				writeError(w, http.StatusBadRequest, "invalid idempotency key")
				return
			}

			ctx := r.Context()
			lg := zctx.From(ctx).With(zap.String("idempotency_key", key))

			if stored, ok, err := store.Recall(ctx, scope, key); err != nil {
				lg.Warn("Recall idempotent response failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			} else if ok {
				if err := replay(w, stored); err != nil {
					lg.Warn("Replay idempotent response failed", zap.Error(err))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
				return
			}

			locked, err := store.TryLock(ctx, scope, key)
			if err != nil {
				lg.Warn("Lock idempotency key failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !locked {
				writeError(w, http.StatusConflict, "request with this idempotency key is in progress")
				return
			}

			rec := &teeRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// The response is out; the request context may already be done.
			storeCtx := context.WithoutCancel(ctx)
			if rec.status >= http.StatusInternalServerError {
				if err := store.Release(storeCtx, scope, key); err != nil {
					lg.Warn("Release idempotency key failed", zap.Error(err))
				}
				return
			}
			if err := store.Remember(storeCtx, scope, key, encodeResponse(rec)); err != nil {
				lg.Warn("Remember idempotent response failed", zap.Error(err))
				_ = store.Release(storeCtx, scope, key)
			}
		})
	}
}

// teeRecorder writes through to the client and keeps a copy of the response.
type teeRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (t *teeRecorder) WriteHeader(code int) {
	if !t.wroteHeader {
		t.status = code
		t.wroteHeader = true
	}
	t.ResponseWriter.WriteHeader(code)
}

func (t *teeRecorder) Write(b []byte) (int, error) {
	t.wroteHeader = true
	t.body.Write(b)
	return t.ResponseWriter.Write(b)
}

func encodeResponse(t *teeRecorder) string {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Int(t.status)
	e.FieldStart("content_type")
	e.Str(t.Header().Get("Content-Type"))
	e.FieldStart("body")
	e.Base64(t.body.Bytes())
	e.ObjEnd()
	return e.String()
}

func replay(w http.ResponseWriter, stored string) error {
	var (
		status      int
		contentType string
		body        []byte
	)
	d := jx.DecodeStr(stored)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "status":
			status, err = d.Int()
		case "content_type":
			contentType, err = d.Str()
		case "body":
			body, err = d.Base64()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return errors.Wrap(err, "decode stored response")
	}
	if status == 0 {
		return errors.New("stored response has no status")
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set(IdempotentReplayedHeader, "true")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	return nil
}
