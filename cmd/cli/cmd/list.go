package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/picogrid/algorithm-simulations/pkg/catalog"
	"github.com/picogrid/algorithm-simulations/pkg/logger"
	"github.com/picogrid/algorithm-simulations/pkg/simulation"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available simulators",
	Long:  `List built-in simulators and those found in the catalog directory`,
	RunE:  listSimulators,
}

func init() {
	listCmd.Flags().Bool("algorithms", false, "list registered algorithms instead of simulators")
}

func listSimulators(cmd *cobra.Command, _ []string) error {
	if onlyAlgorithms, _ := cmd.Flags().GetBool("algorithms"); onlyAlgorithms {
		logger.LogList("Registered algorithms:", simulation.DefaultRegistry.List())
		return nil
	}

	entries, err := catalog.All(settings.CatalogDir)
	if err != nil {
		return fmt.Errorf("failed to discover simulators: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No simulators found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tALGORITHM\tCATEGORY\tSOURCE\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t---------\t--------\t------\t-----------")

	for _, e := range entries {
		algo := e.Content.Algorithm.String()
		if simulation.DefaultRegistry.Resolve(e.Content.Algorithm) == nil {
			algo += " (missing)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Content.Name,
			algo,
			e.Content.Category,
			e.Source(),
			e.Content.Description,
		)
	}

	return w.Flush()
}
