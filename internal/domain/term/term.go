// Package term manages payment terms: scheduled partial payments inside an
// order.
package term

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
)

// StatusWaiting is the status of a term that has not been paid yet.
const StatusWaiting = "WAITING"

// CreateRequest is the client input for a new term. Either OrderID or
// OrderReferenceID must be set.
type CreateRequest struct {
	OrderID          string          `json:"order_id"`
	OrderReferenceID string          `json:"order_reference_id"`
	Amount           checkout.Scalar `json:"amount"`
	DueDate          string          `json:"due_date"`
	TermSequence     int             `json:"term_sequence"`
	Required         bool            `json:"required"`
}

// UpdateRequest is the client input for a term change.
type UpdateRequest struct {
	TermReferenceID string          `json:"term_reference_id"`
	Amount          checkout.Scalar `json:"amount"`
	DueDate         string          `json:"due_date"`
	Required        *bool           `json:"required"`
	Status          string          `json:"status"`
}

// DeleteRequest identifies a term to delete.
type DeleteRequest struct {
	OrderID         string `json:"order_id"`
	TermReferenceID string `json:"term_reference_id"`
}

// RefundRequest is the client input for a term refund.
type RefundRequest struct {
	TermID        string          `json:"term_id"`
	Amount        checkout.Scalar `json:"amount"`
	ReferenceID   string          `json:"reference_id"`
	TermPaymentID string          `json:"term_payment_id"`
}

// Service validates term requests and forwards them to the provider.
type Service struct {
	terms  payment.TermProvider
	orders payment.OrderProvider
	now    func() time.Time
}

// NewService creates a term Service. orders is used to resolve order ids
// from order references.
func NewService(terms payment.TermProvider, orders payment.OrderProvider) *Service {
	return &Service{
		terms:  terms,
		orders: orders,
		now:    time.Now,
	}
}

// Create adds a term to an order. When only the order reference is given the
// order id is looked up at the provider first.
func (s *Service) Create(ctx context.Context, req CreateRequest) (json.RawMessage, error) {
	amount, err := positiveAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		ref := strings.TrimSpace(req.OrderReferenceID)
		if ref == "" {
			return nil, checkout.Invalidf("order_id or order_reference_id is required")
		}
		if orderID, err = s.resolveOrderID(ctx, ref); err != nil {
			return nil, err
		}
	}

	seq := req.TermSequence
	if seq < 1 {
		seq = 1
	}

	return s.terms.CreateTerm(ctx, &payment.TermRequest{
		OrderID:         orderID,
		TermReferenceID: checkout.NewReference("TRM", s.now()),
		Amount:          amount,
		DueDate:         due,
		TermSequence:    seq,
		Required:        req.Required,
		Status:          StatusWaiting,
	})
}

func (s *Service) resolveOrderID(ctx context.Context, referenceID string) (string, error) {
	raw, err := s.orders.GetOrder(ctx, referenceID)
	if err != nil {
		return "", errors.Wrap(err, "get order")
	}
	id, err := orderIDOf(raw)
	if err != nil {
		return "", errors.Wrap(err, "parse order")
	}
	if id == "" {
		return "", errors.Errorf("order %q has no id", referenceID)
	}
	return id, nil
}

// Get returns a term by its reference.
func (s *Service) Get(ctx context.Context, termReferenceID string) (json.RawMessage, error) {
	if strings.TrimSpace(termReferenceID) == "" {
		return nil, checkout.Invalidf("term_reference_id is required")
	}
	return s.terms.GetTerm(ctx, termReferenceID)
}

// Update changes the given fields of a term.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.TermReferenceID) == "" {
		return nil, checkout.Invalidf("term_reference_id is required")
	}

	upd := &payment.TermUpdate{
		TermReferenceID: req.TermReferenceID,
		Required:        req.Required,
		Status:          req.Status,
	}
	if req.Amount.IsSet() {
		amount, err := positiveAmount(req.Amount)
		if err != nil {
			return nil, err
		}
		upd.Amount = decimal.NewNullDecimal(amount)
	}
	if req.DueDate != "" {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		upd.DueDate = due
	}
	return s.terms.UpdateTerm(ctx, upd)
}

// Delete removes a term.
func (s *Service) Delete(ctx context.Context, req DeleteRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.TermReferenceID) == "" {
		return nil, checkout.Invalidf("term_reference_id is required")
	}
	return s.terms.DeleteTerm(ctx, req.OrderID, req.TermReferenceID)
}

// Refund refunds a paid term.
func (s *Service) Refund(ctx context.Context, req RefundRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.TermID) == "" {
		return nil, checkout.Invalidf("term_id is required")
	}
	amount, err := positiveAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	return s.terms.RefundTerm(ctx, &payment.TermRefund{
		TermID:        req.TermID,
		Amount:        amount,
		ReferenceID:   req.ReferenceID,
		TermPaymentID: req.TermPaymentID,
	})
}

func positiveAmount(v checkout.Scalar) (decimal.Decimal, error) {
	amount, err := v.Decimal()
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, checkout.Invalidf("invalid term amount")
	}
	return amount.Round(2), nil
}

// parseDueDate accepts RFC 3339 timestamps and plain dates.
func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, checkout.Invalidf("due_date is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, checkout.Invalidf("invalid due_date")
}

// orderIDOf reads order_id, falling back to id, from an order document.
func orderIDOf(raw []byte) (string, error) {
	var orderID, id string
	d := jx.DecodeBytes(raw)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "order_id", "id":
			if d.Next() != jx.String {
				return d.Skip()
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			if string(key) == "order_id" {
				orderID = v
			} else {
				id = v
			}
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return "", err
	}
	if orderID != "" {
		return orderID, nil
	}
	return id, nil
}
