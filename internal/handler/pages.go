package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

type landingResponse struct {
	Success        bool   `json:"success"`
	Status         string `json:"status"`
	ReferenceID    string `json:"reference_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// paymentLanding answers the provider's redirect after the payment page.
// The provider may redirect with a query string or post a form.
func (h *Handler) paymentLanding(success bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		_ = r.ParseForm()

		resp := landingResponse{
			Success:        success,
			Status:         "failure",
			ReferenceID:    r.Form.Get("reference_id"),
			ConversationID: r.Form.Get("conversation_id"),
		}
		if success {
			resp.Status = "success"
		} else {
			resp.ErrorMessage = r.Form.Get("error_message")
		}

		zctx.From(r.Context()).Info("Payment redirect",
			zap.String("status", resp.Status),
			zap.String("reference_id", resp.ReferenceID),
			zap.String("conversation_id", resp.ConversationID),
		)
		writeJSON(w, http.StatusOK, resp)
	}
}
