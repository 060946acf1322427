package tapsilat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
)

// CreateOrder submits an assembled order.
func (c *Client) CreateOrder(ctx context.Context, req *checkout.OrderRequest) (*payment.OrderResult, error) {
	resp, err := decode[orderResponseDTO](c.post(ctx, "/order/create", toOrderDTO(req)))
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	if resp.ReferenceID == "" {
		return nil, errors.New("create order: response has no reference id")
	}
	return &payment.OrderResult{
		ReferenceID: resp.ReferenceID,
		OrderID:     resp.OrderID,
		CheckoutURL: resp.CheckoutURL,
	}, nil
}

// GetCheckoutURL returns the hosted payment page of an order.
func (c *Client) GetCheckoutURL(ctx context.Context, referenceID string) (string, error) {
	raw, err := c.GetOrder(ctx, referenceID)
	if err != nil {
		return "", err
	}
	u, err := stringField(raw, "checkout_url")
	if err != nil {
		return "", err
	}
	if u == "" {
		return "", errors.Errorf("order %s has no checkout url", referenceID)
	}
	return u, nil
}

func (c *Client) GetOrder(ctx context.Context, referenceID string) (json.RawMessage, error) {
	return c.get(ctx, "/order/"+url.PathEscape(referenceID), nil)
}

func (c *Client) GetOrderStatus(ctx context.Context, referenceID string) (json.RawMessage, error) {
	return c.get(ctx, "/order/"+url.PathEscape(referenceID)+"/status", nil)
}

func (c *Client) GetOrderByConversationID(ctx context.Context, conversationID string) (json.RawMessage, error) {
	return c.get(ctx, "/order/conversation/"+url.PathEscape(conversationID), nil)
}

func (c *Client) GetOrderTransactions(ctx context.Context, referenceID string) (json.RawMessage, error) {
	return c.get(ctx, "/order/"+url.PathEscape(referenceID)+"/transactions", nil)
}

// ListOrders returns one page of orders.
func (c *Client) ListOrders(ctx context.Context, filter payment.ListFilter) (*payment.Page, error) {
	q := pageQuery(filter.Page, filter.PerPage)
	for k, v := range map[string]string{
		"start_date":           filter.StartDate,
		"end_date":             filter.EndDate,
		"organization_id":      filter.OrganizationID,
		"related_reference_id": filter.RelatedReferenceID,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}

	raw, err := c.get(ctx, "/order/list", q)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return parsePage(raw)
}

// ListSubmerchants returns one page of submerchants.
func (c *Client) ListSubmerchants(ctx context.Context, page, perPage int) (*payment.Page, error) {
	raw, err := c.get(ctx, "/order/submerchants", pageQuery(page, perPage))
	if err != nil {
		return nil, errors.Wrap(err, "list submerchants")
	}
	return parsePage(raw)
}

func (c *Client) CancelOrder(ctx context.Context, referenceID string) (json.RawMessage, error) {
	return c.post(ctx, "/order/cancel", referenceDTO{ReferenceID: referenceID})
}

// RefundOrder refunds part of an order, or all of it when amount is null.
func (c *Client) RefundOrder(ctx context.Context, referenceID string, amount decimal.NullDecimal) (json.RawMessage, error) {
	if !amount.Valid {
		return c.post(ctx, "/order/refund-all", referenceDTO{ReferenceID: referenceID})
	}
	return c.post(ctx, "/order/refund", refundDTO{
		ReferenceID: referenceID,
		Amount:      payment.MoneyOf(amount.Decimal),
	})
}

func (c *Client) TerminateOrder(ctx context.Context, referenceID string) (json.RawMessage, error) {
	return c.post(ctx, "/order/terminate", referenceDTO{ReferenceID: referenceID})
}

func (c *Client) ManualCallback(ctx context.Context, referenceID, conversationID string) (json.RawMessage, error) {
	return c.post(ctx, "/order/callback", callbackDTO{
		ReferenceID:    referenceID,
		ConversationID: conversationID,
	})
}

func (c *Client) GetOrganizationSettings(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/organization/settings", nil, nil)
}
