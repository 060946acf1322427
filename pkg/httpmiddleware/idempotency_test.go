package httpmiddleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	locks   map[string]bool
	results map[string]string
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{locks: map[string]bool{}, results: map[string]string{}}
}

func (m *memoryStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.locks[scope+key] {
		return false, nil
	}
	m.locks[scope+key] = true
	return true, nil
}

func (m *memoryStore) Remember(_ context.Context, scope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[scope+key] = value
	return nil
}

func (m *memoryStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.results[scope+key]
	return v, ok, nil
}

func (m *memoryStore) Release(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, scope+key)
	return nil
}

// countingHandler answers with status and counts calls.
type countingHandler struct {
	calls  int
	status int
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.calls++
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.status)
	_, _ = w.Write([]byte(`{"success":true,"call":` + string(rune('0'+h.calls)) + `}`))
}

func withKey(key string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(IdempotencyKeyHeader, key) }
}

func TestIdempotency_Replay(t *testing.T) {
	next := &countingHandler{status: http.StatusOK}
	h := Idempotency(newMemoryStore(), "order")(next)

	first := serve(h, http.MethodPost, "/api/order", withKey("k1"))
	second := serve(h, http.MethodPost, "/api/order", withKey("k1"))

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, "true", second.Header().Get(IdempotentReplayedHeader))
	assert.Empty(t, first.Header().Get(IdempotentReplayedHeader))
}

func TestIdempotency_ReplaysClientErrors(t *testing.T) {
	next := &countingHandler{status: http.StatusBadRequest}
	h := Idempotency(newMemoryStore(), "order")(next)

	serve(h, http.MethodPost, "/api/order", withKey("k1"))
	w := serve(h, http.MethodPost, "/api/order", withKey("k1"))

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	next := &countingHandler{status: http.StatusBadGateway}
	h := Idempotency(newMemoryStore(), "order")(next)

	serve(h, http.MethodPost, "/api/order", withKey("k1"))
	serve(h, http.MethodPost, "/api/order", withKey("k1"))
	assert.Equal(t, 2, next.calls)
}

func TestIdempotency_InProgress(t *testing.T) {
	store := newMemoryStore()
	_, err := store.TryLock(context.Background(), "order", "k1")
	require.NoError(t, err)

	next := &countingHandler{status: http.StatusOK}
	w := serve(Idempotency(store, "order")(next), http.MethodPost, "/api/order", withKey("k1"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, next.calls)
}

func TestIdempotency_NoKeyAndInvalidKey(t *testing.T) {
	next := &countingHandler{status: http.StatusOK}
	h := Idempotency(newMemoryStore(), "order")(next)

	serve(h, http.MethodPost, "/api/order", nil)
	serve(h, http.MethodPost, "/api/order", nil)
	assert.Equal(t, 2, next.calls)

	w := serve(h, http.MethodPost, "/api/order", withKey(strings.Repeat("x", 300)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdempotency_StoreFailureRunsRequest(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("redis down")
	next := &countingHandler{status: http.StatusOK}

	w := serve(Idempotency(store, "order")(next), http.MethodPost, "/api/order", withKey("k1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, next.calls)
}
