package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/checkout/pkg/plan"
)

func printPlans(c *cli.Context) error {
	catalog := plan.DefaultCatalog()
	if path := c.String("catalog"); path != "" {
		var err error
		if catalog, err = plan.LoadCatalogFile(path); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRICE ID\tPLAN\tMODE\tPENDING STATUS")
	for _, e := range catalog.Entries() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.PriceID, e.Name, e.Mode, e.PendingStatus)
	}
	return w.Flush()
}
