package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/tapsilat-checkout/internal/domain/webhook"
)

type receivedResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

// receiveWebhook stores a provider callback body verbatim.
func (h *Handler) receiveWebhook(t webhook.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "callback body too large")
			return
		}

		e, err := h.webhooks.Receive(r.Context(), t, body)
		if err != nil {
			zctx.From(r.Context()).Error("Store webhook failed",
				zap.String("type", string(t)),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "failed to store callback")
			return
		}
		h.metrics.WebhookReceived(r.Context(), t)
		zctx.From(r.Context()).Info("Webhook received",
			zap.String("type", string(t)),
			zap.String("filename", e.Filename),
		)
		writeJSON(w, http.StatusOK, receivedResponse{Status: "received", Filename: e.Filename})
	}
}

// listWebhooks returns stored callbacks, newest first. A failing store
// yields an empty list.
func (h *Handler) listWebhooks(w http.ResponseWriter, r *http.Request) {
	entries, err := h.webhooks.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Warn("List webhooks failed", zap.Error(err))
		entries = nil
	}
	if entries == nil {
		entries = []webhook.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// streamWebhooks pushes every newly received callback as a server-sent
// event until the client goes away.
func (h *Handler) streamWebhooks(w http.ResponseWriter, r *http.Request) {
	if h.broker == nil {
		writeError(w, http.StatusNotImplemented, "event stream disabled")
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	events, cancel := h.broker.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		zctx.From(r.Context()).Warn("Streaming unsupported", zap.Error(err))
		return
	}

	heartbeat := time.NewTicker(h.cfg.StreamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: webhook\nid: %s\ndata: %s\n\n", e.Filename, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
