package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/tapsilat-checkout/internal/domain/webhook"
)

func testEntries(n int) []webhook.Entry {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	entries := make([]webhook.Entry, n)
	for i := range entries {
		raw := fmt.Sprintf(`{"reference_id":"ref-%d"}`, i)
		entries[i] = webhook.Entry{
			Filename:   webhook.NewFilename(base.Add(time.Duration(i)*time.Second), webhook.TypeSuccess),
			Type:       webhook.TypeSuccess,
			ReceivedAt: base.Add(time.Duration(i) * time.Second),
			Content:    json.RawMessage(raw),
			Raw:        raw,
		}
	}
	return entries
}

func TestWriteRead(t *testing.T) {
	entries := testEntries(500)
	entries[3].Raw = "status=ok&ref=3"
	entries[3].Content = json.RawMessage("null")

	var buf bytes.Buffer
	n, err := Write(context.Background(), &buf, entries)
	require.NoError(t, err)
	assert.Equal(t, len(entries), n)

	got, err := Read(context.Background(), &buf)
	require.NoError(t, err)
	require.Len(t, got, len(entries))

	for i := range entries {
		assert.Equal(t, entries[i].Filename, got[i].Filename)
		assert.Equal(t, entries[i].Raw, got[i].Raw)
		assert.True(t, entries[i].ReceivedAt.Equal(got[i].ReceivedAt))
	}
	assert.Equal(t, "null", string(got[3].Content))
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := Write(context.Background(), &buf, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := Read(context.Background(), &buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWrite_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Write(ctx, &bytes.Buffer{}, testEntries(1000))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRead_NotGzip(t *testing.T) {
	_, err := Read(context.Background(), bytes.NewBufferString("plain text"))
	require.Error(t, err)
}
