package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/tapsilat-checkout/internal/domain/term"
)

// relay writes a provider document or maps the error.
func (h *Handler) relay(w http.ResponseWriter, r *http.Request, op string, raw json.RawMessage, err error) {
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeRaw(w, raw)
}

func (h *Handler) createTerm(w http.ResponseWriter, r *http.Request) {
	var req term.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	raw, err := h.terms.Create(r.Context(), req)
	h.relay(w, r, "create term", raw, err)
}

func (h *Handler) getTerm(w http.ResponseWriter, r *http.Request) {
	raw, err := h.terms.Get(r.Context(), chi.URLParam(r, "ref"))
	h.relay(w, r, "get term", raw, err)
}

func (h *Handler) updateTerm(w http.ResponseWriter, r *http.Request) {
	var req term.UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	raw, err := h.terms.Update(r.Context(), req)
	h.relay(w, r, "update term", raw, err)
}

func (h *Handler) deleteTerm(w http.ResponseWriter, r *http.Request) {
	var req term.DeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	raw, err := h.terms.Delete(r.Context(), req)
	h.relay(w, r, "delete term", raw, err)
}

func (h *Handler) refundTerm(w http.ResponseWriter, r *http.Request) {
	var req term.RefundRequest
	if !decodeBody(w, r, &req) {
		return
	}
	raw, err := h.terms.Refund(r.Context(), req)
	h.relay(w, r, "refund term", raw, err)
}
