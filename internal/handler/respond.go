package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
)

const maxBodySize = 1 << 20

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRaw relays a provider document unchanged.
func writeRaw(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		zctx.From(r.Context()).Debug("Invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// fail maps a domain or provider error to a response. Validation errors are
// 400, provider client faults keep the provider status, everything else on
// the provider path is 502.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var vErr *checkout.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, vErr.Message)
		return
	}
	if errors.Is(err, payment.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	h.metrics.ProviderFailure(r.Context(), op)
	status := payment.HTTPStatus(err)
	msg := "payment provider unavailable"
	var pErr *payment.ProviderError
	if errors.As(err, &pErr) {
		msg = pErr.Message
	}
	zctx.From(r.Context()).Warn("Request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.Error(err),
	)
	writeError(w, status, msg)
}

// pageParams reads page and per_page, defaulting to 1 and 10.
func pageParams(r *http.Request) (int, int) {
	return intParam(r, "page", 1), intParam(r, "per_page", 10)
}

func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}
