package plan

import "errors"

// Resolver maps checkout requests onto plan decisions.
type Resolver struct {
	catalog *Catalog
	deals   Deals
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDeals replaces the default deals.
func WithDeals(d Deals) Option {
	return func(r *Resolver) { r.deals = d }
}

// WithLifetimeAmount changes the inline lifetime deal charge.
func WithLifetimeAmount(m Money) Option {
	return func(r *Resolver) {
		amount := m
		r.deals.Lifetime.Amount = &amount
	}
}

// NewResolver builds a resolver over catalog. Panics on a nil catalog.
func NewResolver(catalog *Catalog, opts ...Option) (*Resolver, error) {
	if catalog == nil {
		panic("plan: catalog cannot be nil")
	}
	r := &Resolver{catalog: catalog, deals: DefaultDeals(DefaultLifetimeAmount)}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.deals.validate(catalog); err != nil {
		return nil, err
	}
	return r, nil
}

// Resolve classifies req. It has no side effects.
func (r *Resolver) Resolve(req Request) (Decision, error) {
	if err := req.Validate(); err != nil {
		return Decision{}, err
	}

	deal, ok, err := r.selectDeal(req)
	if err != nil {
		return Decision{}, err
	}
	if ok {
		return Decision{
			Name:          deal.Name,
			Mode:          deal.Mode,
			LineItem:      deal.lineItem(),
			PendingStatus: deal.PendingStatus,
			SelectedPlan:  deal.SelectedPlan,
			Metadata: Metadata{
				UserID:   req.UserID,
				PriceID:  deal.SelectedPlan,
				PlanName: deal.Name,
			},
		}, nil
	}

	if req.PriceID == "" {
		return Decision{}, missingField("priceId")
	}
	entry, found := r.catalog.Lookup(req.PriceID)
	if !found {
		return Decision{}, &ValidationError{Kind: ErrUnknownPriceID, Field: "priceId", Value: req.PriceID}
	}

	return Decision{
		Name:          entry.Name,
		Mode:          entry.Mode,
		LineItem:      LineItem{PriceID: entry.PriceID, Quantity: 1},
		PendingStatus: entry.PendingStatus,
		SelectedPlan:  entry.PriceID,
		Metadata: Metadata{
			UserID:   req.UserID,
			PriceID:  req.PriceID,
			PlanName: entry.Name,
		},
	}, nil
}

// selectDeal returns the single deal the request selects. Selecting more than
// one deal is a validation error.
func (r *Resolver) selectDeal(req Request) (Deal, bool, error) {
	var selected []Deal
	for _, c := range []struct {
		deal Deal
		flag bool
	}{
		{r.deals.Yearly, req.IsYearlyDeal},
		{r.deals.Lifetime, req.IsLifetimeDeal},
	} {
		if c.flag || (c.deal.PriceID != "" && req.PriceID == c.deal.PriceID) {
			selected = append(selected, c.deal)
		}
	}
	switch len(selected) {
	case 0:
		return Deal{}, false, nil
	case 1:
		return selected[0], true, nil
	default:
		return Deal{}, false, &ValidationError{Kind: ErrConflictingDeal, Field: "deal", Value: req.PriceID}
	}
}

// IsValidationError reports whether err is a request classification failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
