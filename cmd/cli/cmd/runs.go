package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/picogrid/algorithm-simulations/pkg/archive"
	"github.com/picogrid/algorithm-simulations/pkg/logger"
	"github.com/picogrid/algorithm-simulations/pkg/trace"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived simulator sessions",
	Long:  `List sessions recorded in the run archive, newest first`,
	RunE:  listRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the steps of an archived session",
	Args:  cobra.ExactArgs(1),
	RunE:  showRun,
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old sessions from the archive",
	RunE:  pruneRuns,
}

func init() {
	runsCmd.Flags().IntP("limit", "n", 20, "number of sessions to list (0 for all)")
	runsShowCmd.Flags().String("csv", "", "export the steps to a CSV file instead of printing them")
	runsPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "delete sessions started longer ago than this")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsPruneCmd)
}

func openExistingArchive() (*archive.Store, error) {
	path, err := settings.ResolveArchivePath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no run archive at %s", path)
	}
	return archive.Open(path)
}

func listRuns(cmd *cobra.Command, _ []string) error {
	store, err := openExistingArchive()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No archived runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSIMULATOR\tSTARTED\tSTEPS\tCONTROLS")
	_, _ = fmt.Fprintln(w, "--\t---------\t-------\t-----\t--------")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.ID[:min(8, len(r.ID))],
			r.Simulator,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Steps,
			formatControls(r.Controls),
		)
	}

	return w.Flush()
}

func formatControls(controls map[string]string) string {
	ids := make([]string, 0, len(controls))
	for id := range controls {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pairs := make([]string, len(ids))
	for i, id := range ids {
		pairs[i] = id + "=" + controls[id]
	}
	return strings.Join(pairs, " ")
}

func showRun(cmd *cobra.Command, args []string) error {
	store, err := openExistingArchive()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, err := store.FindRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	steps, err := store.Steps(cmd.Context(), run)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("csv"); path != "" {
		w, err := trace.Create(path)
		if err != nil {
			return err
		}
		for _, rec := range steps {
			if err := w.Write(rec); err != nil {
				_ = w.Close()
				return err
			}
		}
		if err := w.Close(); err != nil {
			return err
		}
		logger.Successf("Exported %d steps to %s", w.Count(), path)
		return nil
	}

	logger.LogSection(fmt.Sprintf("%s (%s)", run.Simulator, run.ID))
	logger.LogKeyValue("Started", run.StartedAt.Local().Format(time.RFC1123))
	logger.LogKeyValue("Controls", formatControls(run.Controls))
	for _, rec := range steps {
		fmt.Printf("%4d  %-7s %s", rec.Step, strings.ToUpper(rec.Type), rec.Message)
		if rec.Stats != "" {
			fmt.Printf("  (%s)", rec.Stats)
		}
		fmt.Println()
	}
	return nil
}

func pruneRuns(cmd *cobra.Command, _ []string) error {
	store, err := openExistingArchive()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	age, _ := cmd.Flags().GetDuration("older-than")
	n, err := store.DeleteBefore(cmd.Context(), time.Now().Add(-age))
	if err != nil {
		return err
	}
	logger.Successf("Removed %d archived runs", n)
	return nil
}
