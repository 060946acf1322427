package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
)

// PlaceOrderResult holds the output of a successfully created order.
type PlaceOrderResult struct {
	Request     *checkout.OrderRequest
	Order       *payment.OrderResult
	CheckoutURL payment.Optional[string]
}

// Overview is an order together with its transactions.
type Overview struct {
	Order        json.RawMessage `json:"order"`
	Transactions json.RawMessage `json:"transactions"`
}

// Service encapsulates order creation.
type Service struct {
	assembler *checkout.Assembler
	provider  payment.OrderProvider
	ledger    Repository
	now       func() time.Time
}

// NewService creates an order Service. ledger may be nil.
func NewService(
	assembler *checkout.Assembler,
	provider payment.OrderProvider,
	ledger Repository,
) *Service {
	return &Service{
		assembler: assembler,
		provider:  provider,
		ledger:    ledger,
		now:       time.Now,
	}
}

// PlaceOrder assembles the submission, creates the order at the provider,
// looks up the checkout URL and records the order in the ledger.
//
// Assembly errors are *checkout.ValidationError and no provider call is made.
// The checkout URL lookup and the ledger write never fail the call.
func (s *Service) PlaceOrder(ctx context.Context, sub checkout.Submission, origin checkout.Origin) (*PlaceOrderResult, error) {
	req, err := s.assembler.Assemble(sub, origin)
	if err != nil {
		return nil, err
	}

	res, err := s.provider.CreateOrder(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	lg := zctx.From(ctx).With(
		zap.String("reference_id", res.ReferenceID),
		zap.String("conversation_id", req.ConversationID),
	)
	ctx = zctx.Base(ctx, lg)

	checkoutURL := payment.Some(res.CheckoutURL)
	if res.CheckoutURL == "" {
		checkoutURL = payment.BestEffort(ctx, "get checkout url", func(ctx context.Context) (string, error) {
			return s.provider.GetCheckoutURL(ctx, res.ReferenceID)
		})
	}

	s.record(ctx, req, res)
	lg.Info("Order created", zap.String("amount", req.Amount.StringFixed(2)))

	return &PlaceOrderResult{
		Request:     req,
		Order:       res,
		CheckoutURL: checkoutURL,
	}, nil
}

func (s *Service) record(ctx context.Context, req *checkout.OrderRequest, res *payment.OrderResult) {
	if s.ledger == nil {
		return
	}
	err := s.ledger.Create(ctx, &Checkout{
		ReferenceID:    res.ReferenceID,
		OrderID:        res.OrderID,
		ConversationID: req.ConversationID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Installment:    req.Installment,
		ItemCount:      len(req.BasketItems),
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		zctx.From(ctx).Warn("Record checkout failed", zap.Error(err))
	}
}

// Checkouts lists the ledger, newest first. Without a ledger the list is
// empty.
func (s *Service) Checkouts(ctx context.Context, limit int) ([]Checkout, error) {
	if s.ledger == nil {
		return []Checkout{}, nil
	}
	rows, err := s.ledger.List(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list checkouts")
	}
	return rows, nil
}

// Overview fetches an order and its transactions concurrently. The order is
// required; missing transactions degrade to an empty list.
func (s *Service) Overview(ctx context.Context, referenceID string) (*Overview, error) {
	var out Overview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.provider.GetOrder(gctx, referenceID)
		if err != nil {
			return errors.Wrap(err, "get order")
		}
		out.Order = raw
		return nil
	})
	g.Go(func() error {
		out.Transactions = payment.BestEffort(gctx, "get order transactions", func(ctx context.Context) (json.RawMessage, error) {
			return s.provider.GetOrderTransactions(ctx, referenceID)
		}).Or(json.RawMessage("[]"))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
