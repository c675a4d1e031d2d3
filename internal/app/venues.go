package app

import (
	"fmt"
	"os"
	"text/tabwriter"
)

// Venues prints the effective registry after configuration overrides.
func (a *App) Venues() error {
	registry := a.newRegistry()

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Identifier\tName\tChain\tEnabled\tPriority\tFlashloan")

	for _, v := range registry.Active("", 0, 0) {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%t\t%d\t%t\n", v.Identifier, v.Name, v.Chain, v.Enabled, v.Priority, v.SupportsFlashloan)
	}
	writer.Flush()

	stats := registry.Statistics()
	fmt.Fprintf(os.Stdout, "\ntotal=%d enabled=%d disabled=%d flashloan=%d\n", stats.Total, stats.Enabled, stats.Disabled, stats.Flashloan)
	return nil
}
