// Package plan classifies a checkout request into one canonical plan decision.
//
// A Resolver combines a read-only Catalog of price ids with a fixed set of
// Deals. Resolution is a pure function: it never talks to a provider or a
// store, and the same Request always yields the same Decision.
//
// Precedence is strict. A deal selected by flag or by its fixed price id wins
// over the catalog, and the caller-supplied plan type never overrides either.
// An unknown price id is rejected rather than mapped to a default plan.
//
//	resolver, err := plan.NewResolver(plan.DefaultCatalog())
//	if err != nil {
//		return err
//	}
//	decision, err := resolver.Resolve(plan.Request{
//		CustomerEmail: "a@example.com",
//		UserID:        "u1",
//		PriceID:       plan.PriceStarter,
//	})
package plan
