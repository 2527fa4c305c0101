package billing_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkout/pkg/billing"
	"github.com/dmitrymomot/checkout/pkg/logger"
	"github.com/dmitrymomot/checkout/pkg/plan"
)

// fakeStripe records the form of every create call and answers with status and body.
type fakeStripe struct {
	calls  atomic.Int32
	mu     sync.Mutex
	form   url.Values
	status int
	body   string
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if r.Method != http.MethodPost || r.URL.Path != "/v1/checkout/sessions" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	raw, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(raw))
	f.mu.Lock()
	f.form = form
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, f.body)
}

func (f *fakeStripe) sent() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

func newStripe(t *testing.T, fake *fakeStripe) *billing.StripeProvider {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	p, err := billing.NewStripeProvider(
		billing.StripeConfig{SecretKey: "sk_test_123", APIURL: srv.URL},
		billing.WithStripeHTTPClient(srv.Client()),
		billing.WithStripeLogger(logger.Discard()),
	)
	require.NoError(t, err)
	return p
}

func subscriptionParams() billing.SessionParams {
	return billing.SessionParams{
		Mode:              plan.ModeSubscription,
		LineItem:          plan.LineItem{PriceID: plan.PriceStarter, Quantity: 1},
		CustomerEmail:     "a@x.io",
		ClientReferenceID: "u1",
		SuccessURL:        "https://app.example.com/success.html?session_id={CHECKOUT_SESSION_ID}&userId=u1",
		CancelURL:         "https://app.example.com?checkout=cancelled",
		Metadata:          map[string]string{"userId": "u1", "planType": "Starter", "priceId": plan.PriceStarter},
	}
}

func TestStripeProvider_Subscription(t *testing.T) {
	t.Parallel()

	fake := &fakeStripe{
		status: http.StatusOK,
		body:   `{"id":"cs_test_1","object":"checkout.session","mode":"subscription","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`,
	}
	p := newStripe(t, fake)

	sess, err := p.CreateSession(context.Background(), subscriptionParams())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, plan.ModeSubscription, sess.Mode)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", sess.URL)
	assert.Equal(t, "stripe", p.Name())

	assert.Equal(t, int32(1), fake.calls.Load())
	assert.Equal(t, "subscription", fake.sent().Get("mode"))
	assert.Equal(t, "card", fake.sent().Get("payment_method_types[0]"))
	assert.Equal(t, plan.PriceStarter, fake.sent().Get("line_items[0][price]"))
	assert.Equal(t, "1", fake.sent().Get("line_items[0][quantity]"))
	assert.Equal(t, "a@x.io", fake.sent().Get("customer_email"))
	assert.Equal(t, "u1", fake.sent().Get("client_reference_id"))
	assert.Equal(t, "u1", fake.sent().Get("metadata[userId]"))
	assert.Equal(t, "Starter", fake.sent().Get("metadata[planType]"))
	assert.Equal(t, "u1", fake.sent().Get("subscription_data[metadata][userId]"))
	assert.Contains(t, fake.sent().Get("success_url"), "{CHECKOUT_SESSION_ID}")
}

func TestStripeProvider_InlineAmount(t *testing.T) {
	t.Parallel()

	fake := &fakeStripe{
		status: http.StatusOK,
		body:   `{"id":"cs_test_2","object":"checkout.session","mode":"payment","url":"https://checkout.stripe.com/c/pay/cs_test_2"}`,
	}
	p := newStripe(t, fake)

	params := subscriptionParams()
	params.Mode = plan.ModePayment
	params.LineItem = plan.LineItem{
		Quantity:    1,
		Amount:      &plan.Money{Amount: 9900, Currency: "usd"},
		Name:        "Lifetime Deal",
		Description: "One-time payment for lifetime access",
	}

	sess, err := p.CreateSession(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, plan.ModePayment, sess.Mode)

	assert.Equal(t, "payment", fake.sent().Get("mode"))
	assert.Empty(t, fake.sent().Get("line_items[0][price]"))
	assert.Equal(t, "9900", fake.sent().Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "usd", fake.sent().Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "Lifetime Deal", fake.sent().Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "u1", fake.sent().Get("payment_intent_data[metadata][userId]"))
}

func TestStripeProvider_Error(t *testing.T) {
	t.Parallel()

	t.Run("provider status is kept", func(t *testing.T) {
		t.Parallel()
		fake := &fakeStripe{
			status: http.StatusBadRequest,
			body:   `{"error":{"type":"invalid_request_error","message":"No such price: 'price_x'"}}`,
		}
		p := newStripe(t, fake)

		_, err := p.CreateSession(context.Background(), subscriptionParams())
		require.Error(t, err)

		var perr *billing.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
		assert.Equal(t, "No such price: 'price_x'", perr.Message)
		assert.Equal(t, "stripe", perr.Provider)
	})

	t.Run("server errors are not retried", func(t *testing.T) {
		t.Parallel()
		fake := &fakeStripe{
			status: http.StatusServiceUnavailable,
			body:   `{"error":{"type":"api_error","message":"unavailable"}}`,
		}
		p := newStripe(t, fake)

		_, err := p.CreateSession(context.Background(), subscriptionParams())
		var perr *billing.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusServiceUnavailable, perr.StatusCode)
		assert.Equal(t, int32(1), fake.calls.Load())
	})
}

func TestStripeProvider_InvalidParams(t *testing.T) {
	t.Parallel()

	fake := &fakeStripe{status: http.StatusOK, body: `{}`}
	p := newStripe(t, fake)

	tests := []struct {
		name   string
		mutate func(*billing.SessionParams)
	}{
		{"unknown mode", func(p *billing.SessionParams) { p.Mode = "setup" }},
		{"zero quantity", func(p *billing.SessionParams) { p.LineItem.Quantity = 0 }},
		{"price and amount", func(p *billing.SessionParams) { p.LineItem.Amount = &plan.Money{Amount: 1, Currency: "usd"} }},
		{"missing urls", func(p *billing.SessionParams) { p.CancelURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := subscriptionParams()
			tt.mutate(&params)
			_, err := p.CreateSession(context.Background(), params)
			assert.ErrorIs(t, err, billing.ErrInvalidSessionParams)
		})
	}
	assert.Equal(t, int32(0), fake.calls.Load())
}

func TestNewStripeProvider_MissingKey(t *testing.T) {
	t.Parallel()

	_, err := billing.NewStripeProvider(billing.StripeConfig{})
	assert.ErrorIs(t, err, billing.ErrMissingAPIKey)
}
