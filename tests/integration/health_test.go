//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestProbes(t *testing.T) {
	tests := []struct {
		path   string
		checks []string
	}{
		{"/livez", []string{"goroutines", "gc"}},
		{"/readyz", []string{"postgres", "redis"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := doGet(t, tt.path)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			body := decodeJSON[healthResponse](t, resp)
			if body.Status != "ok" {
				t.Fatalf("status: got %q", body.Status)
			}
			if len(body.Checks) != len(tt.checks) {
				t.Errorf("checks: got %v, want %v", body.Checks, tt.checks)
			}
			for _, name := range tt.checks {
				if got := body.Checks[name]; got != "ok" {
					t.Errorf("check %s: got %q, want ok", name, got)
				}
			}
		})
	}
}

func TestReadyz_PostgresWebhookBackend(t *testing.T) {
	resp := doGet(t, "/readyz")
	defer resp.Body.Close()

	body := decodeJSON[healthResponse](t, resp)
	if _, ok := body.Checks["webhooks_dir"]; ok {
		t.Error("webhooks_dir check registered with the postgres backend")
	}
}
