package tapsilat

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
)

// CreateSubscription creates a recurring payment.
func (c *Client) CreateSubscription(ctx context.Context, req *payment.SubscriptionRequest) (*payment.SubscriptionResult, error) {
	resp, err := decode[subscriptionResponseDTO](c.post(ctx, "/subscription/create", toSubscriptionDTO(req)))
	if err != nil {
		return nil, errors.Wrap(err, "create subscription")
	}
	return &payment.SubscriptionResult{
		ReferenceID:      resp.ReferenceID,
		OrderReferenceID: resp.OrderReferenceID,
	}, nil
}

// ListSubscriptions returns one page of subscriptions.
func (c *Client) ListSubscriptions(ctx context.Context, page, perPage int) (*payment.Page, error) {
	raw, err := c.get(ctx, "/subscription/list", pageQuery(page, perPage))
	if err != nil {
		return nil, errors.Wrap(err, "list subscriptions")
	}
	return parsePage(raw)
}

// CancelSubscription cancels a subscription by reference id.
func (c *Client) CancelSubscription(ctx context.Context, referenceID string) error {
	_, err := c.post(ctx, "/subscription/cancel", subscriptionCancelDTO{
		ReferenceID:    referenceID,
		SubscriptionID: referenceID,
	})
	if err != nil {
		return errors.Wrap(err, "cancel subscription")
	}
	return nil
}
