//go:build integration

package integration

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func newRequest(t *testing.T, method, path string, headers map[string]string) *http.Request {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, baseURL+path, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestRequestID_OrderSubmission(t *testing.T) {
	const id = "checkout-7f3a"

	resp := doPostWithHeaders(t, "/api/order", `{"cart":[]}`, map[string]string{"X-Request-ID": id})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-ID"); got != id {
		t.Errorf("X-Request-ID: got %q, want %q", got, id)
	}
}

func TestRequestID_ReplacesInvalid(t *testing.T) {
	sent := strings.Repeat("x", 200)

	resp := doPostWithHeaders(t, "/api/order", `{"cart":[]}`, map[string]string{"X-Request-ID": sent})
	defer resp.Body.Close()

	got := resp.Header.Get("X-Request-ID")
	if got == "" || got == sent {
		t.Fatalf("expected a generated request id, got %q", got)
	}
}

func TestCORS_OrderPreflight(t *testing.T) {
	req := newRequest(t, http.MethodOptions, "/api/order", map[string]string{
		"Origin":                         "https://shop.example.com",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "Content-Type, Idempotency-Key",
	})
	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Idempotency-Key") {
		t.Errorf("Access-Control-Allow-Headers %q lacks Idempotency-Key", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("Access-Control-Allow-Methods %q lacks POST", got)
	}
	if got := resp.Header.Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("Access-Control-Max-Age: got %q", got)
	}
}

func TestCORS_ExposesReplayHeaders(t *testing.T) {
	req := newRequest(t, http.MethodGet, "/api/order/list", map[string]string{"Origin": "https://shop.example.com"})
	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	expose := resp.Header.Get("Access-Control-Expose-Headers")
	for _, h := range []string{"Idempotent-Replayed", "X-Request-ID"} {
		if !strings.Contains(expose, h) {
			t.Errorf("Access-Control-Expose-Headers %q lacks %s", expose, h)
		}
	}
}

func TestRateLimit_ApiOnly(t *testing.T) {
	resp := doGet(t, "/api/order/list")
	resp.Body.Close()
	if got := resp.Header.Get("X-RateLimit-Limit"); got != "1000" {
		t.Errorf("X-RateLimit-Limit on api route: got %q, want 1000", got)
	}

	for _, path := range []string{"/api/callback", "/api/fail_callback", "/api/refund_callback", "/api/cancel_callback"} {
		resp := doPost(t, path, `{"reference_id":"rate-limit"}`)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		if got := resp.Header.Get("X-RateLimit-Limit"); got != "" {
			t.Errorf("%s: callbacks bypass the rate limiter, got limit %q", path, got)
		}
	}
}
