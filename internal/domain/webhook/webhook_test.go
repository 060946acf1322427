package webhook

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockStore struct {
	mu      sync.Mutex
	appends []string
	err     error
}

func (m *mockStore) Append(_ context.Context, t Type, raw []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name := NewFilename(time.Now(), t)
	m.appends = append(m.appends, name)
	return name, nil
}

func (m *mockStore) List(_ context.Context) ([]Entry, error) {
	return nil, m.err
}

// --- Tests ---

func TestParseType(t *testing.T) {
	for _, s := range []string{"success", "fail", "refund", "cancel"} {
		got, err := ParseType(s)
		require.NoError(t, err)
		assert.Equal(t, Type(s), got)
	}

	_, err := ParseType("../etc")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestFilename_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 123456000, time.UTC)

	name := NewFilename(now, TypeRefund)
	assert.Regexp(t, `^20240309_140507\.123456_[0-9a-f]{8}_refund\.json$`, name)

	ts, typ, ok := ParseFilename(name)
	require.True(t, ok)
	assert.True(t, now.Equal(ts))
	assert.Equal(t, TypeRefund, typ)

	_, _, ok = ParseFilename("notes.txt")
	assert.False(t, ok)
}

func TestFilename_DistinctWithinSameInstant(t *testing.T) {
	now := time.Now()
	seen := map[string]struct{}{}
	for range 50 {
		name := NewFilename(now, TypeSuccess)
		_, dup := seen[name]
		require.False(t, dup)
		seen[name] = struct{}{}
	}
}

func TestContentOf(t *testing.T) {
	assert.JSONEq(t, `{"a":1}`, string(ContentOf([]byte(`{"a":1}`))))
	assert.Equal(t, "null", string(ContentOf([]byte("status=ok&ref=1"))))
	assert.Equal(t, "null", string(ContentOf(nil)))
}

func TestService_Receive(t *testing.T) {
	store := &mockStore{}
	broker := NewBroker(4)
	svc := NewService(store, broker)

	events, cancel := broker.Subscribe()
	defer cancel()

	e, err := svc.Receive(context.Background(), TypeSuccess, []byte(`{"reference_id":"r1"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeSuccess, e.Type)
	assert.JSONEq(t, `{"reference_id":"r1"}`, string(e.Content))
	require.Len(t, store.appends, 1)
	assert.Equal(t, store.appends[0], e.Filename)

	select {
	case got := <-events:
		assert.Equal(t, e.Filename, got.Filename)
	case <-time.After(time.Second):
		t.Fatal("event not published")
	}
}

func TestService_ReceiveStoreError(t *testing.T) {
	broker := NewBroker(1)
	svc := NewService(&mockStore{err: errors.New("disk full")}, broker)

	events, cancel := broker.Subscribe()
	defer cancel()

	_, err := svc.Receive(context.Background(), TypeFail, []byte(`{}`))
	require.Error(t, err)
	assert.Empty(t, events)
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker(1)
	_, cancelSlow := b.Subscribe()
	fast, cancelFast := b.Subscribe()
	defer cancelSlow()
	defer cancelFast()

	assert.Equal(t, 2, b.Publish(Entry{Filename: "1"}))
	<-fast
	assert.Equal(t, 1, b.Publish(Entry{Filename: "2"}))
}

func TestBroker_CancelIsIdempotent(t *testing.T) {
	b := NewBroker(1)
	ch, cancel := b.Subscribe()
	require.Equal(t, 1, b.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, b.Subscribers())

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.Publish(Entry{}))
}
