package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
)

type mockProvider struct {
	payment.OrderProvider

	last      *payment.SubscriptionRequest
	result    *payment.SubscriptionResult
	err       error
	cancelled string
	urlCalls  int
	url       string
	urlErr    error
}

func (m *mockProvider) CreateSubscription(_ context.Context, req *payment.SubscriptionRequest) (*payment.SubscriptionResult, error) {
	m.last = req
	return m.result, m.err
}

func (m *mockProvider) ListSubscriptions(context.Context, int, int) (*payment.Page, error) {
	return payment.EmptyPage(), nil
}

func (m *mockProvider) CancelSubscription(_ context.Context, ref string) error {
	m.cancelled = ref
	return m.err
}

func (m *mockProvider) GetCheckoutURL(context.Context, string) (string, error) {
	m.urlCalls++
	return m.url, m.urlErr
}

var origin = checkout.Origin{Scheme: "https", Host: "shop.test"}

func newService(p *mockProvider) *Service {
	svc := NewService(p, p, checkout.DefaultConfig())
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return svc
}

func TestBuild(t *testing.T) {
	svc := newService(&mockProvider{})

	sub, err := svc.Build(Request{
		Name:            "Gold",
		Amount:          checkout.Text("99.999"),
		Period:          0,
		PaymentDate:     0,
		SubscriberName:  "Zeynep Ak",
		SubscriberEmail: "z@example.com",
	}, origin)
	require.NoError(t, err)

	assert.Equal(t, "Gold", sub.Title)
	assert.True(t, decimal.RequireFromString("100.00").Equal(sub.Amount))
	assert.Equal(t, "TRY", sub.Currency)
	assert.Equal(t, 1, sub.Period)
	assert.Equal(t, 1, sub.PaymentDate)
	assert.Equal(t, DefaultCycle, sub.Cycle)
	assert.Regexp(t, `^SUB-1700000000123-[0-9a-f]{8}$`, sub.ExternalReferenceID)
	assert.Equal(t, "https://shop.test/payment/success", sub.SuccessURL)
	assert.Equal(t, "Zeynep", sub.User.FirstName)
	assert.Equal(t, "Ak", sub.User.LastName)
	assert.Equal(t, "Turkey", sub.User.Country)
	assert.Equal(t, "11111111111", sub.User.IdentityNumber)
	assert.Equal(t, "Zeynep Ak", sub.Billing.ContactName)
}

func TestBuild_ReferenceUniqueWithinMillisecond(t *testing.T) {
	svc := newService(&mockProvider{})
	req := Request{Amount: checkout.Number("10"), SubscriberEmail: "a@b.c"}

	first, err := svc.Build(req, origin)
	require.NoError(t, err)
	second, err := svc.Build(req, origin)
	require.NoError(t, err)
	assert.NotEqual(t, first.ExternalReferenceID, second.ExternalReferenceID)
}

func TestBuild_Validation(t *testing.T) {
	svc := newService(&mockProvider{})

	tests := []struct {
		name string
		req  Request
		msg  string
	}{
		{"missing amount", Request{SubscriberEmail: "a@b.c"}, "invalid subscription amount"},
		{"zero amount", Request{Amount: checkout.Number("0"), SubscriberEmail: "a@b.c"}, "invalid subscription amount"},
		{"missing email", Request{Amount: checkout.Number("10")}, "missing subscriber field: subscriber_email"},
		{"negative period", Request{Amount: checkout.Number("10"), SubscriberEmail: "a@b.c", Period: -1}, "invalid subscription period"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Build(tt.req, origin)
			var vErr *checkout.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.msg, vErr.Message)
		})
	}
}

func TestCreate_WithCheckoutURL(t *testing.T) {
	p := &mockProvider{
		result: &payment.SubscriptionResult{ReferenceID: "sub-1", OrderReferenceID: "ord-ref"},
		url:    "https://pay.test/ord-ref",
	}

	res, err := newService(p).Create(context.Background(), Request{
		Amount:          checkout.Number("10"),
		SubscriberEmail: "a@b.c",
	}, origin)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", res.ReferenceID)
	assert.Equal(t, "https://pay.test/ord-ref", res.CheckoutURL.Or(""))
}

func TestCreate_CheckoutURLBestEffort(t *testing.T) {
	p := &mockProvider{
		result: &payment.SubscriptionResult{ReferenceID: "sub-1", OrderReferenceID: "ord-ref"},
		urlErr: errors.New("boom"),
	}

	res, err := newService(p).Create(context.Background(), Request{
		Amount:          checkout.Number("10"),
		SubscriberEmail: "a@b.c",
	}, origin)
	require.NoError(t, err)
	_, ok := res.CheckoutURL.Get()
	assert.False(t, ok)
}

func TestCreate_NoOrderReference(t *testing.T) {
	p := &mockProvider{result: &payment.SubscriptionResult{ReferenceID: "sub-1"}}

	_, err := newService(p).Create(context.Background(), Request{
		Amount:          checkout.Number("10"),
		SubscriberEmail: "a@b.c",
	}, origin)
	require.NoError(t, err)
	assert.Zero(t, p.urlCalls)
}

func TestCancel(t *testing.T) {
	p := &mockProvider{}
	svc := newService(p)

	require.NoError(t, svc.Cancel(context.Background(), "sub-1"))
	assert.Equal(t, "sub-1", p.cancelled)

	var vErr *checkout.ValidationError
	require.ErrorAs(t, svc.Cancel(context.Background(), " "), &vErr)
}

func TestList(t *testing.T) {
	page := newService(&mockProvider{}).List(context.Background(), 1, 10)
	require.NotNil(t, page)
	assert.Empty(t, page.Rows)
}
