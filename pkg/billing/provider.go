package billing

import (
	"context"
	"errors"

	"github.com/dmitrymomot/checkout/pkg/plan"
)

// Provider creates hosted checkout sessions.
type Provider interface {
	Name() string
	CreateSession(ctx context.Context, p SessionParams) (*Session, error)
}

// SessionParams describes the one session to create.
type SessionParams struct {
	Mode              plan.Mode
	LineItem          plan.LineItem
	CustomerEmail     string
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
	Metadata          map[string]string
}

func (p SessionParams) validate() error {
	switch {
	case !p.Mode.Valid():
		return errors.Join(ErrInvalidSessionParams, errors.New("unknown mode"))
	case p.LineItem.Quantity < 1:
		return errors.Join(ErrInvalidSessionParams, errors.New("line item quantity must be positive"))
	case (p.LineItem.PriceID == "") == (p.LineItem.Amount == nil):
		return errors.Join(ErrInvalidSessionParams, errors.New("line item needs exactly one of price id or amount"))
	case p.SuccessURL == "" || p.CancelURL == "":
		return errors.Join(ErrInvalidSessionParams, errors.New("success and cancel URLs are required"))
	}
	return nil
}

// Session is a created provider checkout session.
type Session struct {
	ID   string
	Mode plan.Mode
	URL  string
}
