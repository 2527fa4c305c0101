package plan

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField    = errors.New("missing required field")
	ErrUnknownPriceID  = errors.New("invalid price ID")
	ErrConflictingDeal = errors.New("conflicting deal selection")

	ErrInvalidCatalog = errors.New("invalid plan catalog")
	ErrInvalidDeal    = errors.New("invalid deal configuration")
)

// ValidationError describes a request the resolver refuses to classify.
// Kind is one of ErrMissingField, ErrUnknownPriceID or ErrConflictingDeal and
// is reachable through errors.Is.
type ValidationError struct {
	Kind  error
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrMissingField):
		return fmt.Sprintf("Missing required field: %s", e.Field)
	case errors.Is(e.Kind, ErrUnknownPriceID):
		return "Invalid price ID"
	case errors.Is(e.Kind, ErrConflictingDeal):
		return "Conflicting deal selection"
	default:
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Kind)
	}
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func missingField(field string) *ValidationError {
	return &ValidationError{Kind: ErrMissingField, Field: field}
}
