package handler

import (
	"net/http"

	"github.com/xenking/tapsilat-checkout/internal/domain/subscription"
)

type subscriptionResponse struct {
	Success bool `json:"success"`
	*subscription.Result
}

func (h *Handler) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscription.Request
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.subscriptions.Create(r.Context(), req, h.origin(r))
	if err != nil {
		h.fail(w, r, "create subscription", err)
		return
	}
	writeJSON(w, http.StatusOK, subscriptionResponse{Success: true, Result: res})
}

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	writeJSON(w, http.StatusOK, h.subscriptions.List(r.Context(), page, perPage))
}

type cancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	var req cancelSubscriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.subscriptions.Cancel(r.Context(), req.SubscriptionID); err != nil {
		h.fail(w, r, "cancel subscription", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Subscription cancelled"})
}
