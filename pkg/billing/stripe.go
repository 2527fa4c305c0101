package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/dmitrymomot/checkout/pkg/plan"
)

const ProviderStripe = "stripe"

type StripeConfig struct {
	SecretKey string `env:"STRIPE_SECRET_KEY"`
	// APIURL overrides the Stripe API base URL, e.g. for stripe-mock.
	APIURL             string        `env:"STRIPE_API_URL"`
	PaymentMethodTypes []string      `env:"STRIPE_PAYMENT_METHOD_TYPES" envDefault:"card" envSeparator:","`
	Timeout            time.Duration `env:"STRIPE_TIMEOUT" envDefault:"30s"`
}

// StripeOption configures StripeProvider.
type StripeOption func(*stripeOptions)

type stripeOptions struct {
	httpClient *http.Client
	log        *slog.Logger
}

func WithStripeHTTPClient(c *http.Client) StripeOption {
	return func(o *stripeOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithStripeLogger routes stripe-go's internal logging through log.
func WithStripeLogger(log *slog.Logger) StripeOption {
	return func(o *stripeOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// StripeProvider creates Stripe Checkout sessions.
type StripeProvider struct {
	client             session.Client
	paymentMethodTypes []string
}

// NewStripeProvider builds a provider with network retries disabled.
func NewStripeProvider(cfg StripeConfig, opts ...StripeOption) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}
	o := stripeOptions{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        o.httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     stripeLogger{log: o.log},
	}
	if cfg.APIURL != "" {
		backendConfig.URL = stripe.String(cfg.APIURL)
	}

	methods := cfg.PaymentMethodTypes
	if len(methods) == 0 {
		methods = []string{"card"}
	}

	return &StripeProvider{
		client: session.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
			Key: cfg.SecretKey,
		},
		paymentMethodTypes: methods,
	}, nil
}

func (s *StripeProvider) Name() string { return ProviderStripe }

// CreateSession issues exactly one create call.
func (s *StripeProvider) CreateSession(ctx context.Context, p SessionParams) (*Session, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(p.Mode)),
		PaymentMethodTypes: stripe.StringSlice(s.paymentMethodTypes),
		LineItems:          []*stripe.CheckoutSessionLineItemParams{stripeLineItem(p.LineItem)},
		SuccessURL:         stripe.String(p.SuccessURL),
		CancelURL:          stripe.String(p.CancelURL),
		Metadata:           p.Metadata,
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	if p.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(p.ClientReferenceID)
	}
	// Copy metadata onto the object the confirmation webhook receives.
	switch p.Mode {
	case plan.ModeSubscription:
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{Metadata: p.Metadata}
	case plan.ModePayment:
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{Metadata: p.Metadata}
	}
	params.Context = ctx

	sess, err := s.client.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, newProviderError(ProviderStripe, stripeErr.HTTPStatusCode, stripeErr.Msg, err)
		}
		return nil, newProviderError(ProviderStripe, 0, "", err)
	}

	return &Session{ID: sess.ID, Mode: plan.Mode(sess.Mode), URL: sess.URL}, nil
}

func stripeLineItem(li plan.LineItem) *stripe.CheckoutSessionLineItemParams {
	item := &stripe.CheckoutSessionLineItemParams{Quantity: stripe.Int64(li.Quantity)}
	if li.Amount == nil {
		item.Price = stripe.String(li.PriceID)
		return item
	}
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(li.Name),
	}
	if li.Description != "" {
		product.Description = stripe.String(li.Description)
	}
	item.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency:    stripe.String(li.Amount.Currency),
		UnitAmount:  stripe.Int64(li.Amount.Amount),
		ProductData: product,
	}
	return item
}

// stripeLogger adapts slog to stripe.LeveledLoggerInterface.
type stripeLogger struct {
	log *slog.Logger
}

func (l stripeLogger) Debugf(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (l stripeLogger) Infof(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (l stripeLogger) Warnf(format string, v ...any) {
	l.log.Warn(fmt.Sprintf(format, v...), "component", "stripe")
}

func (l stripeLogger) Errorf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...), "component", "stripe")
}
