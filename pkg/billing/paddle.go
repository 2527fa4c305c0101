package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

const ProviderPaddle = "paddle"

type PaddleConfig struct {
	APIKey      string `env:"PADDLE_API_KEY"`
	Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
	// PriceMap maps catalog price ids to Paddle price ids (pri_...).
	PriceMap map[string]string `env:"PADDLE_PRICE_MAP" envSeparator:"," envKeyValSeparator:":"`
	// InlinePriceID is the Paddle price charged for fixed-amount line items.
	InlinePriceID string `env:"PADDLE_INLINE_PRICE_ID"`
	CheckoutURL   string `env:"PADDLE_CHECKOUT_URL"`
}

// PaddleProvider creates Paddle transactions whose checkout URL acts as the session.
type PaddleProvider struct {
	client *paddle.SDK
	cfg    PaddleConfig
}

func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var (
		client *paddle.SDK
		err    error
	)
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, errors.Join(ErrInvalidEnvironment, fmt.Errorf("paddle environment %q", cfg.Environment))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{client: client, cfg: cfg}, nil
}

func (p *PaddleProvider) Name() string { return ProviderPaddle }

func (p *PaddleProvider) CreateSession(ctx context.Context, params SessionParams) (*Session, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	req, err := buildPaddleTransaction(p.cfg, params)
	if err != nil {
		return nil, err
	}

	tx, err := p.client.TransactionsClient.CreateTransaction(ctx, req)
	if err != nil {
		return nil, newProviderError(ProviderPaddle, 0, "", err)
	}
	if tx.Checkout == nil || tx.Checkout.URL == nil {
		return nil, newProviderError(ProviderPaddle, 0, ErrNoCheckoutURL.Error(), ErrNoCheckoutURL)
	}

	return &Session{ID: tx.ID, Mode: params.Mode, URL: *tx.Checkout.URL}, nil
}

// PaddlePriceID resolves the Paddle price for a line item.
func PaddlePriceID(cfg PaddleConfig, params SessionParams) (string, error) {
	li := params.LineItem
	if li.Amount != nil {
		if cfg.InlinePriceID == "" {
			return "", errors.Join(ErrUnmappedPrice, fmt.Errorf("inline item %q", li.Name))
		}
		return cfg.InlinePriceID, nil
	}
	if id, ok := cfg.PriceMap[li.PriceID]; ok && id != "" {
		return id, nil
	}
	// Already a Paddle id.
	if strings.HasPrefix(li.PriceID, "pri_") {
		return li.PriceID, nil
	}
	return "", errors.Join(ErrUnmappedPrice, fmt.Errorf("price %q", li.PriceID))
}

func buildPaddleTransaction(cfg PaddleConfig, params SessionParams) (*paddle.CreateTransactionRequest, error) {
	priceID, err := PaddlePriceID(cfg, params)
	if err != nil {
		return nil, err
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  priceID,
		Quantity: int(params.LineItem.Quantity),
	})

	custom := paddle.CustomData{
		"success_url": params.SuccessURL,
		"cancel_url":  params.CancelURL,
	}
	for k, v := range params.Metadata {
		custom[k] = v
	}
	if params.CustomerEmail != "" {
		custom["email"] = params.CustomerEmail
	}

	req := &paddle.CreateTransactionRequest{
		Items:      []paddle.CreateTransactionItems{*item},
		CustomData: custom,
	}
	if cfg.CheckoutURL != "" {
		req.Checkout = &paddle.TransactionCheckout{URL: paddle.PtrTo(cfg.CheckoutURL)}
	}
	return req, nil
}
