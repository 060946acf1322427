package tapsilat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
)

// CreateTerm adds a payment term to an order.
func (c *Client) CreateTerm(ctx context.Context, req *payment.TermRequest) (json.RawMessage, error) {
	return c.post(ctx, "/order/term", termDTO{
		OrderID:         req.OrderID,
		TermReferenceID: req.TermReferenceID,
		Amount:          payment.MoneyOf(req.Amount),
		DueDate:         formatDate(req.DueDate),
		TermSequence:    req.TermSequence,
		Required:        req.Required,
		Status:          req.Status,
	})
}

func (c *Client) GetTerm(ctx context.Context, termReferenceID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("term_reference_id", termReferenceID)
	return c.get(ctx, "/order/term", q)
}

func (c *Client) UpdateTerm(ctx context.Context, req *payment.TermUpdate) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, "/order/term", nil, termUpdateDTO{
		TermReferenceID: req.TermReferenceID,
		Amount:          payment.NullMoney(req.Amount),
		DueDate:         formatDate(req.DueDate),
		Required:        req.Required,
		Status:          req.Status,
	})
}

func (c *Client) DeleteTerm(ctx context.Context, orderID, termReferenceID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, "/order/term", nil, termDeleteDTO{
		OrderID:         orderID,
		TermReferenceID: termReferenceID,
	})
}

func (c *Client) RefundTerm(ctx context.Context, req *payment.TermRefund) (json.RawMessage, error) {
	return c.post(ctx, "/order/term/refund", termRefundDTO{
		TermID:        req.TermID,
		Amount:        payment.MoneyOf(req.Amount),
		ReferenceID:   req.ReferenceID,
		TermPaymentID: req.TermPaymentID,
	})
}
