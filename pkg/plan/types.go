package plan

import (
	"fmt"
	"strings"
)

// Name is the canonical, customer-facing plan name.
type Name string

const (
	Starter      Name = "Starter"
	Pro          Name = "Pro"
	YearlyDeal   Name = "Yearly Deal"
	LifetimeDeal Name = "Lifetime Deal"
)

// Mode is the checkout transaction shape.
type Mode string

const (
	ModeSubscription Mode = "subscription"
	ModePayment      Mode = "payment"
)

func (m Mode) Valid() bool {
	return m == ModeSubscription || m == ModePayment
}

// Status is the pending subscription status recorded before activation.
type Status string

const (
	StatusPendingActivation Status = "pending_activation"
	StatusPendingLifetime   Status = "pending_lifetime"
)

func (s Status) Valid() bool {
	return s == StatusPendingActivation || s == StatusPendingLifetime
}

// Money represents an amount in the smallest currency unit.
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}

// Request is the caller input to Resolve.
type Request struct {
	CustomerEmail  string
	UserID         string
	PriceID        string
	PlanType       string // informational only, never consulted
	IsYearlyDeal   bool
	IsLifetimeDeal bool
}

// Validate checks the identity fields every request must carry.
func (r Request) Validate() error {
	if strings.TrimSpace(r.CustomerEmail) == "" {
		return missingField("customerEmail")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return missingField("userId")
	}
	return nil
}

// LineItem is the single item of a checkout session. Exactly one of PriceID
// or Amount is set.
type LineItem struct {
	PriceID     string
	Quantity    int64
	Amount      *Money
	Name        string
	Description string
}

// Metadata is attached to the provider session.
type Metadata struct {
	UserID   string
	PriceID  string
	PlanName Name
}

// Map returns a fresh map using the keys the confirmation step reads back.
func (m Metadata) Map() map[string]string {
	return map[string]string{
		"userId":   m.UserID,
		"planType": string(m.PlanName),
		"priceId":  m.PriceID,
	}
}

// Decision is the canonical classification of one checkout request.
type Decision struct {
	Name          Name
	Mode          Mode
	LineItem      LineItem
	PendingStatus Status
	SelectedPlan  string
	Metadata      Metadata
}

// IsDeal reports whether the decision came from a deal rather than the catalog.
func (d Decision) IsDeal() bool {
	return d.Name == YearlyDeal || d.Name == LifetimeDeal
}
