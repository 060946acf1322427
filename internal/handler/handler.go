// Package handler exposes the checkout API over HTTP.
package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
	"github.com/xenking/tapsilat-checkout/internal/domain/order"
	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
	"github.com/xenking/tapsilat-checkout/internal/domain/subscription"
	"github.com/xenking/tapsilat-checkout/internal/domain/term"
	"github.com/xenking/tapsilat-checkout/internal/domain/webhook"
	"github.com/xenking/tapsilat-checkout/pkg/httpmiddleware"
)

// Config holds non-dependency settings of the Handler.
type Config struct {
	// PublicURL overrides the scheme and host used for payment redirect
	// URLs. When empty they are derived from each request.
	PublicURL string
	// StreamHeartbeat is the comment interval on the webhook event stream.
	StreamHeartbeat time.Duration
	// CheckoutListLimit caps GET /api/checkouts.
	CheckoutListLimit int
}

// Services are the domain collaborators of the Handler.
type Services struct {
	Orders        *order.Service
	Subscriptions *subscription.Service
	Terms         *term.Service
	Webhooks      *webhook.Service
	Broker        *webhook.Broker
	// Provider serves the pass-through operations that need no domain logic.
	Provider payment.Provider
	// Idempotency is optional; without it Idempotency-Key is ignored.
	Idempotency httpmiddleware.IdempotencyStore
	Metrics     *Metrics
}

// Handler serves the checkout API.
type Handler struct {
	cfg    Config
	public *url.URL

	orders        *order.Service
	subscriptions *subscription.Service
	terms         *term.Service
	webhooks      *webhook.Service
	broker        *webhook.Broker
	provider      payment.Provider
	idempotency   httpmiddleware.IdempotencyStore
	metrics       *Metrics
}

// NewHandler constructs a Handler.
func NewHandler(cfg Config, svc Services) (*Handler, error) {
	if cfg.StreamHeartbeat <= 0 {
		cfg.StreamHeartbeat = 15 * time.Second
	}
	if cfg.CheckoutListLimit <= 0 {
		cfg.CheckoutListLimit = 50
	}

	var public *url.URL
	if cfg.PublicURL != "" {
		u, err := url.Parse(strings.TrimSuffix(cfg.PublicURL, "/"))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, errors.Errorf("invalid public url %q", cfg.PublicURL)
		}
		public = u
	}

	metrics := svc.Metrics
	if metrics == nil {
		metrics = NopMetrics()
	}

	return &Handler{
		cfg:           cfg,
		public:        public,
		orders:        svc.Orders,
		subscriptions: svc.Subscriptions,
		terms:         svc.Terms,
		webhooks:      svc.Webhooks,
		broker:        svc.Broker,
		provider:      svc.Provider,
		idempotency:   svc.Idempotency,
		metrics:       metrics,
	}, nil
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.idempotency != nil {
				r.Use(httpmiddleware.Idempotency(h.idempotency, "order"))
			}
			r.Post("/order", h.createOrder)
		})
		r.Get("/order/list", h.listOrders)
		r.Get("/order/details/{ref}", h.orderDetails)
		r.Get("/order/overview/{ref}", h.orderOverview)
		r.Get("/order/transactions/{ref}", h.orderTransactions)
		r.Get("/order/conversation/{cid}", h.orderByConversation)
		r.Get("/order/submerchants", h.listSubmerchants)
		r.Post("/order/terminate", h.terminateOrder)
		r.Post("/order/manual-callback", h.manualCallback)
		r.Get("/payment/status/{ref}", h.paymentStatus)
		r.Post("/cancel", h.cancelOrder)
		r.Post("/refund", h.refundOrder)
		r.Get("/checkouts", h.listCheckouts)

		r.Post("/subscription", h.createSubscription)
		r.Get("/subscription/list", h.listSubscriptions)
		r.Post("/subscription/cancel", h.cancelSubscription)

		r.Post("/term/create", h.createTerm)
		r.Get("/term/{ref}", h.getTerm)
		r.Post("/term/update", h.updateTerm)
		r.Post("/term/delete", h.deleteTerm)
		r.Post("/term/refund", h.refundTerm)

		r.Get("/organization/settings", h.organizationSettings)

		for path, t := range CallbackPaths {
			r.Post(path, h.receiveWebhook(t))
		}
		r.Get("/webhooks", h.listWebhooks)
		r.Get("/webhooks/stream", h.streamWebhooks)
	})

	r.Get("/payment/success", h.paymentLanding(true))
	r.Get("/payment/failure", h.paymentLanding(false))
	r.Post("/payment/success", h.paymentLanding(true))
	r.Post("/payment/failure", h.paymentLanding(false))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// CallbackPaths maps the provider callback endpoints, relative to /api, to
// the webhook type they record.
var CallbackPaths = map[string]webhook.Type{
	"/callback":        webhook.TypeSuccess,
	"/fail_callback":   webhook.TypeFail,
	"/refund_callback": webhook.TypeRefund,
	"/cancel_callback": webhook.TypeCancel,
}

// IsCallback reports whether r is a provider callback. Callbacks are exempt
// from rate limiting.
func IsCallback(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	path, ok := strings.CutPrefix(r.URL.Path, "/api")
	if !ok {
		return false
	}
	_, ok = CallbackPaths[path]
	return ok
}

// origin derives the caller's origin for redirect URLs and the buyer IP.
// The host is the request Host; deployments behind a proxy that rewrites it
// set PublicURL.
func (h *Handler) origin(r *http.Request) checkout.Origin {
	o := checkout.Origin{
		Scheme:   httpmiddleware.Scheme(r),
		Host:     r.Host,
		ClientIP: httpmiddleware.ClientIP(r),
	}
	if h.public != nil {
		o.Scheme = h.public.Scheme
		o.Host = h.public.Host
	}
	return o
}
