package payment

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
)

// ErrNotConfigured is returned when the provider credentials are missing.
var ErrNotConfigured = errors.New("payment provider not configured")

// ProviderError is a failed provider call that reached the provider.
type ProviderError struct {
	// StatusCode is the HTTP status the provider answered with.
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Message)
}

// ClientFault reports whether the provider blamed the request itself.
func (e *ProviderError) ClientFault() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// HTTPStatus maps a provider failure to the status relayed to the caller:
// client faults keep the provider status, everything else is a bad gateway.
func HTTPStatus(err error) int {
	var pErr *ProviderError
	if errors.As(err, &pErr) && pErr.ClientFault() {
		return pErr.StatusCode
	}
	return http.StatusBadGateway
}
