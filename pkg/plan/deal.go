package plan

import (
	"errors"
	"fmt"
)

// LifetimeDealSentinel is recorded as selected_plan for the lifetime deal,
// which has no provider price id.
const LifetimeDealSentinel = "lifetime_deal"

// DefaultLifetimeAmount is the one-time lifetime deal charge.
var DefaultLifetimeAmount = Money{Amount: 9900, Currency: "usd"}

// Deal is a hard-coded special case selected by flag or by its fixed price id.
// A deal with a PriceID references that price; otherwise Amount is charged inline.
type Deal struct {
	Name          Name
	Mode          Mode
	PriceID       string
	Amount        *Money
	Description   string
	PendingStatus Status
	SelectedPlan  string
}

// Deals holds the two supported deals.
type Deals struct {
	Yearly   Deal
	Lifetime Deal
}

// DefaultDeals returns the yearly subscription deal and the lifetime one-time
// deal charged at amount.
func DefaultDeals(lifetimeAmount Money) Deals {
	return Deals{
		Yearly: Deal{
			Name:          YearlyDeal,
			Mode:          ModeSubscription,
			PriceID:       PriceYearly,
			PendingStatus: StatusPendingActivation,
			SelectedPlan:  PriceYearly,
		},
		Lifetime: Deal{
			Name:          LifetimeDeal,
			Mode:          ModePayment,
			Amount:        &lifetimeAmount,
			Description:   "One-time payment for lifetime access",
			PendingStatus: StatusPendingLifetime,
			SelectedPlan:  LifetimeDealSentinel,
		},
	}
}

func (d Deal) validate() error {
	if d.Name == "" || !d.Mode.Valid() || !d.PendingStatus.Valid() || d.SelectedPlan == "" {
		return fmt.Errorf("deal %q: name, mode, pending status and selected plan are required", d.Name)
	}
	if (d.PriceID == "") == (d.Amount == nil) {
		return fmt.Errorf("deal %q: exactly one of price id or amount must be set", d.Name)
	}
	if d.Amount != nil && (d.Amount.Amount <= 0 || d.Amount.Currency == "") {
		return fmt.Errorf("deal %q: invalid amount %s", d.Name, d.Amount)
	}
	return nil
}

func (ds Deals) validate(catalog *Catalog) error {
	for _, d := range []Deal{ds.Yearly, ds.Lifetime} {
		if err := d.validate(); err != nil {
			return errors.Join(ErrInvalidDeal, err)
		}
		if d.PriceID == "" {
			continue
		}
		if _, clash := catalog.Lookup(d.PriceID); clash {
			return errors.Join(ErrInvalidDeal, fmt.Errorf("deal %q price id %s is also a catalog entry", d.Name, d.PriceID))
		}
	}
	if ds.Yearly.PriceID != "" && ds.Yearly.PriceID == ds.Lifetime.PriceID {
		return errors.Join(ErrInvalidDeal, errors.New("deals share a price id"))
	}
	return nil
}

func (d Deal) lineItem() LineItem {
	if d.Amount != nil {
		amount := *d.Amount
		return LineItem{
			Quantity:    1,
			Amount:      &amount,
			Name:        string(d.Name),
			Description: d.Description,
		}
	}
	return LineItem{PriceID: d.PriceID, Quantity: 1}
}
