package billing

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingAPIKey        = errors.New("billing provider API key is required")
	ErrInvalidEnvironment   = errors.New("invalid billing provider environment")
	ErrInvalidSessionParams = errors.New("invalid checkout session parameters")
	ErrUnmappedPrice        = errors.New("price has no provider mapping")
	ErrNoCheckoutURL        = errors.New("no checkout URL returned from provider")
)

// ProviderError is a failed session creation. StatusCode is the provider's
// HTTP status, or 500 when the provider did not report one.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: create checkout session: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func newProviderError(provider string, status int, msg string, err error) *ProviderError {
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return &ProviderError{Provider: provider, StatusCode: status, Message: msg, Err: err}
}
