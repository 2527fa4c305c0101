package plan

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Known price ids.
const (
	PriceStarter   = "price_1RYhAlE92IbV5FBUCtOmXIow"
	PricePro       = "price_1RSdrmE92IbV5FBUV1zE2VhD"
	PriceProLegacy = "price_1RYhFGE92IbV5FBUqiKOcIqX"
	PriceYearly    = "price_1RasluE92IbV5FBUlp01YVZe"
)

// Entry maps one provider price id to a plan.
type Entry struct {
	PriceID       string `yaml:"price_id"`
	Name          Name   `yaml:"name"`
	Mode          Mode   `yaml:"mode"`
	PendingStatus Status `yaml:"pending_status"`
}

func (e Entry) validate() error {
	switch {
	case strings.TrimSpace(e.PriceID) == "":
		return errors.New("empty price id")
	case strings.TrimSpace(string(e.Name)) == "":
		return fmt.Errorf("price %s: empty plan name", e.PriceID)
	case !e.Mode.Valid():
		return fmt.Errorf("price %s: unknown mode %q", e.PriceID, e.Mode)
	case !e.PendingStatus.Valid():
		return fmt.Errorf("price %s: unknown pending status %q", e.PriceID, e.PendingStatus)
	}
	return nil
}

// Catalog is an immutable price id lookup table.
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog validates entries and builds a catalog.
// Duplicate price ids are rejected.
func NewCatalog(entries ...Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.Join(ErrInvalidCatalog, errors.New("no entries"))
	}
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, errors.Join(ErrInvalidCatalog, err)
		}
		if _, dup := c.entries[e.PriceID]; dup {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("duplicate price id %s", e.PriceID))
		}
		c.entries[e.PriceID] = e
	}
	return c, nil
}

// DefaultCatalog returns the built-in price table.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Entry{PriceID: PriceStarter, Name: Starter, Mode: ModeSubscription, PendingStatus: StatusPendingActivation},
		Entry{PriceID: PricePro, Name: Pro, Mode: ModeSubscription, PendingStatus: StatusPendingActivation},
		Entry{PriceID: PriceProLegacy, Name: Pro, Mode: ModeSubscription, PendingStatus: StatusPendingActivation},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the entry for priceID.
func (c *Catalog) Lookup(priceID string) (Entry, bool) {
	e, ok := c.entries[priceID]
	return e, ok
}

// Entries returns a copy of all entries ordered by price id.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.PriceID, b.PriceID) })
	return out
}

func (c *Catalog) Len() int { return len(c.entries) }
