package handler

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/tapsilat-checkout/internal/domain/webhook"
)

// Metrics are the business counters of the API.
type Metrics struct {
	ordersCreated    metric.Int64Counter
	providerFailures metric.Int64Counter
	webhooksReceived metric.Int64Counter
}

// NewMetrics registers the counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.ordersCreated, err = meter.Int64Counter("checkout.orders.created",
		metric.WithDescription("Orders accepted by the payment provider"),
	); err != nil {
		return nil, errors.Wrap(err, "orders counter")
	}
	if m.providerFailures, err = meter.Int64Counter("checkout.provider.failures",
		metric.WithDescription("Failed payment provider calls"),
	); err != nil {
		return nil, errors.Wrap(err, "provider failures counter")
	}
	if m.webhooksReceived, err = meter.Int64Counter("checkout.webhooks.received",
		metric.WithDescription("Provider callbacks stored"),
	); err != nil {
		return nil, errors.Wrap(err, "webhooks counter")
	}
	return &m, nil
}

// NopMetrics returns counters that record nothing.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(""))
	return m
}

// OrderCreated counts an accepted order.
func (m *Metrics) OrderCreated(ctx context.Context, currency string, installment int) {
	m.ordersCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("currency", currency),
		attribute.Int("installment", installment),
	))
}

// ProviderFailure counts a failed provider call.
func (m *Metrics) ProviderFailure(ctx context.Context, op string) {
	m.providerFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// WebhookReceived counts a stored callback.
func (m *Metrics) WebhookReceived(ctx context.Context, t webhook.Type) {
	m.webhooksReceived.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(t))))
}
