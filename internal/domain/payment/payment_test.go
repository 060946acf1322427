package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBestEffort_Success(t *testing.T) {
	got := BestEffort(context.Background(), "lookup", func(context.Context) (string, error) {
		return "https://pay.example.com/c/1", nil
	})

	v, ok := got.Get()
	require.True(t, ok)
	assert.Equal(t, "https://pay.example.com/c/1", v)

	data, err := json.Marshal(struct {
		URL Optional[string] `json:"checkout_url"`
	}{got})
	require.NoError(t, err)
	assert.JSONEq(t, `{"checkout_url":"https://pay.example.com/c/1"}`, string(data))
}

func TestBestEffort_FailureIsLoggedAndNull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))

	got := BestEffort(ctx, "lookup", func(context.Context) (string, error) {
		return "", errors.New("boom")
	})

	_, ok := got.Get()
	assert.False(t, ok)
	assert.Equal(t, "fallback", got.Or("fallback"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "lookup", logs.All()[0].ContextMap()["op"])

	data, err := json.Marshal(struct {
		URL Optional[string] `json:"checkout_url"`
	}{got})
	require.NoError(t, err)
	assert.JSONEq(t, `{"checkout_url":null}`, string(data))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"client fault", &ProviderError{StatusCode: 422, Message: "bad amount"}, 422},
		{"wrapped client fault", errors.Wrap(&ProviderError{StatusCode: 404}, "get order"), 404},
		{"server fault", &ProviderError{StatusCode: 500}, http.StatusBadGateway},
		{"transport", errors.New("dial tcp: refused"), http.StatusBadGateway},
		{"not configured", ErrNotConfigured, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestProviderError_Message(t *testing.T) {
	err := &ProviderError{StatusCode: 400, Code: "101", Message: "invalid buyer"}
	assert.Equal(t, "provider error 400 (101): invalid buyer", err.Error())
	assert.True(t, err.ClientFault())
}

func TestEmptyPage(t *testing.T) {
	data, err := json.Marshal(EmptyPage())
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows":[],"total_count":0}`, string(data))
}

func TestMoney_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Amount  Money  `json:"amount"`
		Refund  *Money `json:"refund,omitempty"`
		Partial *Money `json:"partial,omitempty"`
	}{
		Amount:  MoneyOf(decimal.RequireFromString("0.1").Add(decimal.RequireFromString("0.2"))),
		Partial: NullMoney(decimal.NewNullDecimal(decimal.RequireFromString("1234567.5"))),
		Refund:  NullMoney(decimal.NullDecimal{}),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"amount":0.30,"partial":1234567.50}`, string(data))
}
