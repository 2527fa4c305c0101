package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrymomot/checkout/pkg/plan"
)

// CreateCheckoutRequest is the JSON body of a checkout call. Presence of
// customerEmail and userId is checked by plan.Request.Validate so the
// client sees "Missing required field" messages; the tags here bound shape.
type CreateCheckoutRequest struct {
	CustomerEmail  string `json:"customerEmail" validate:"omitempty,email,max=254"`
	UserID         string `json:"userId" validate:"omitempty,max=128"`
	PriceID        string `json:"priceId" validate:"omitempty,max=255"`
	PlanType       string `json:"planType" validate:"omitempty,max=64"`
	IsYearlyDeal   bool   `json:"isYearlyDeal"`
	IsLifetimeDeal bool   `json:"isLifetimeDeal"`
}

// normalize trims identifier fields. Validation runs on the result.
func (r CreateCheckoutRequest) normalize() CreateCheckoutRequest {
	r.CustomerEmail = strings.TrimSpace(r.CustomerEmail)
	r.UserID = strings.TrimSpace(r.UserID)
	r.PriceID = strings.TrimSpace(r.PriceID)
	return r
}

func (r CreateCheckoutRequest) toPlanRequest() plan.Request {
	return plan.Request{
		CustomerEmail:  r.CustomerEmail,
		UserID:         r.UserID,
		PriceID:        r.PriceID,
		PlanType:       r.PlanType,
		IsYearlyDeal:   r.IsYearlyDeal,
		IsLifetimeDeal: r.IsLifetimeDeal,
	}
}

// CreateCheckoutResponse is the 200 body.
type CreateCheckoutResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Success  bool   `json:"success"`
	PlanType string `json:"plan_type"`
	Mode     string `json:"mode"`
	URL      string `json:"url,omitempty"`
}

func newCreateCheckoutResponse(res *Result) CreateCheckoutResponse {
	return CreateCheckoutResponse{
		ID:       res.SessionID,
		UserID:   res.UserID,
		Success:  true,
		PlanType: string(res.PlanName),
		Mode:     string(res.Mode),
		URL:      res.SessionURL,
	}
}

// FieldError is a request field that failed shape validation.
type FieldError struct {
	Field string
	Rule  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("Invalid field: %s", e.Field)
}

// requestValidator checks CreateCheckoutRequest tags and reports field names
// by their JSON keys.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{v: v}
}

func (rv *requestValidator) validate(req CreateCheckoutRequest) error {
	err := rv.v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field(), Rule: verrs[0].Tag()}
	}
	return err
}
