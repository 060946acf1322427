package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
	"github.com/xenking/tapsilat-checkout/internal/domain/order"
	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
)

type createOrderResponse struct {
	Success        bool                     `json:"success"`
	ReferenceID    string                   `json:"reference_id"`
	OrderID        string                   `json:"order_id,omitempty"`
	ConversationID string                   `json:"conversation_id"`
	Amount         payment.Money            `json:"amount"`
	Currency       string                   `json:"currency"`
	CheckoutURL    payment.Optional[string] `json:"checkout_url"`
}

// createOrder assembles the submitted cart into an order and creates it at
// the provider.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var sub checkout.Submission
	if !decodeBody(w, r, &sub) {
		return
	}

	res, err := h.orders.PlaceOrder(r.Context(), sub, h.origin(r))
	if err != nil {
		h.fail(w, r, "create order", err)
		return
	}
	h.metrics.OrderCreated(r.Context(), res.Request.Currency, res.Request.Installment)

	writeJSON(w, http.StatusOK, createOrderResponse{
		Success:        true,
		ReferenceID:    res.Order.ReferenceID,
		OrderID:        res.Order.OrderID,
		ConversationID: res.Request.ConversationID,
		Amount:         payment.MoneyOf(res.Request.Amount),
		Currency:       res.Request.Currency,
		CheckoutURL:    res.CheckoutURL,
	})
}

// listOrders relays one page of orders. Provider failures yield an empty
// page.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	q := r.URL.Query()
	filter := payment.ListFilter{
		Page:               page,
		PerPage:            perPage,
		StartDate:          q.Get("start_date"),
		EndDate:            q.Get("end_date"),
		OrganizationID:     q.Get("organization_id"),
		RelatedReferenceID: q.Get("related_reference_id"),
	}

	rows := payment.BestEffort(r.Context(), "list orders", func(ctx context.Context) (*payment.Page, error) {
		return h.provider.ListOrders(ctx, filter)
	}).Or(payment.EmptyPage())
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) listSubmerchants(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	rows := payment.BestEffort(r.Context(), "list submerchants", func(ctx context.Context) (*payment.Page, error) {
		return h.provider.ListSubmerchants(ctx, page, perPage)
	}).Or(payment.EmptyPage())
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) orderDetails(w http.ResponseWriter, r *http.Request) {
	raw, err := h.provider.GetOrder(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.fail(w, r, "get order", err)
		return
	}
	writeRaw(w, raw)
}

// orderOverview returns an order and its transactions in one response.
func (h *Handler) orderOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.orders.Overview(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.fail(w, r, "order overview", err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// orderTransactions relays the transactions of an order. Provider failures
// yield an empty list.
func (h *Handler) orderTransactions(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	raw := payment.BestEffort(r.Context(), "get order transactions", func(ctx context.Context) (json.RawMessage, error) {
		return h.provider.GetOrderTransactions(ctx, ref)
	}).Or(json.RawMessage("[]"))
	writeRaw(w, raw)
}

func (h *Handler) orderByConversation(w http.ResponseWriter, r *http.Request) {
	raw, err := h.provider.GetOrderByConversationID(r.Context(), chi.URLParam(r, "cid"))
	if err != nil {
		h.fail(w, r, "get order by conversation", err)
		return
	}
	writeRaw(w, raw)
}

func (h *Handler) paymentStatus(w http.ResponseWriter, r *http.Request) {
	raw, err := h.provider.GetOrderStatus(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.fail(w, r, "get order status", err)
		return
	}
	writeRaw(w, raw)
}

type referenceRequest struct {
	ReferenceID    string `json:"reference_id"`
	ConversationID string `json:"conversation_id"`
}

// decodeReference reads a body carrying reference_id, which is required.
func decodeReference(w http.ResponseWriter, r *http.Request) (referenceRequest, bool) {
	var req referenceRequest
	if !decodeBody(w, r, &req) {
		return req, false
	}
	req.ReferenceID = strings.TrimSpace(req.ReferenceID)
	if req.ReferenceID == "" {
		writeError(w, http.StatusBadRequest, "reference_id is required")
		return req, false
	}
	return req, true
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReference(w, r)
	if !ok {
		return
	}
	raw, err := h.provider.CancelOrder(r.Context(), req.ReferenceID)
	if err != nil {
		h.fail(w, r, "cancel order", err)
		return
	}
	writeRaw(w, raw)
}

type refundRequest struct {
	ReferenceID string          `json:"reference_id"`
	Amount      checkout.Scalar `json:"amount"`
}

// refundOrder refunds the given amount, or the whole order when the amount
// is omitted or empty.
func (h *Handler) refundOrder(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ReferenceID) == "" {
		writeError(w, http.StatusBadRequest, "reference_id is required")
		return
	}

	var amount decimal.NullDecimal
	if req.Amount.IsSet() && strings.TrimSpace(req.Amount.String()) != "" {
		d, err := req.Amount.Decimal()
		if err != nil || !d.IsPositive() {
			writeError(w, http.StatusBadRequest, "invalid refund amount")
			return
		}
		amount = decimal.NewNullDecimal(d.Round(2))
	}

	raw, err := h.provider.RefundOrder(r.Context(), req.ReferenceID, amount)
	if err != nil {
		h.fail(w, r, "refund order", err)
		return
	}
	writeRaw(w, raw)
}

func (h *Handler) terminateOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReference(w, r)
	if !ok {
		return
	}
	raw, err := h.provider.TerminateOrder(r.Context(), req.ReferenceID)
	if err != nil {
		h.fail(w, r, "terminate order", err)
		return
	}
	writeRaw(w, raw)
}

func (h *Handler) manualCallback(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReference(w, r)
	if !ok {
		return
	}
	raw, err := h.provider.ManualCallback(r.Context(), req.ReferenceID, req.ConversationID)
	if err != nil {
		h.fail(w, r, "manual callback", err)
		return
	}
	writeRaw(w, raw)
}

func (h *Handler) organizationSettings(w http.ResponseWriter, r *http.Request) {
	raw, err := h.provider.GetOrganizationSettings(r.Context())
	if err != nil {
		h.fail(w, r, "get organization settings", err)
		return
	}
	writeRaw(w, raw)
}

type checkoutsResponse struct {
	Rows []order.Checkout `json:"rows"`
}

// listCheckouts lists the local ledger of created orders.
func (h *Handler) listCheckouts(w http.ResponseWriter, r *http.Request) {
	limit := min(intParam(r, "limit", h.cfg.CheckoutListLimit), h.cfg.CheckoutListLimit)
	rows := payment.BestEffort(r.Context(), "list checkouts", func(ctx context.Context) ([]order.Checkout, error) {
		return h.orders.Checkouts(ctx, limit)
	}).Or([]order.Checkout{})
	writeJSON(w, http.StatusOK, checkoutsResponse{Rows: rows})
}
