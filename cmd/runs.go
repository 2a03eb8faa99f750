package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/overcast-analytics/climate-cli/internal/model"
	"github.com/overcast-analytics/climate-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect clustering run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clustering runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "runs list: open store")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "runs list: migrate store")
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "runs show: open store")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "runs show: migrate store")
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		assignments, err := st.ListAssignments(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "runs show: assignments")
		}

		formatRun(os.Stdout, run, assignments)
		return nil
	},
}

func formatRunsList(w io.Writer, runs []model.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tK\tCLUSTERS\tSTATIONS\tDISTORTION")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.1f\n",
			run.ID,
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.K,
			run.Clusters,
			run.Stations,
			run.Distortion,
		)
	}
	tw.Flush() //nolint:errcheck
}

func formatRun(w io.Writer, run *model.Run, assignments []model.StationAssignment) {
	fmt.Fprintf(w, "Run:        %s\n", run.ID)
	fmt.Fprintf(w, "Created:    %s\n", run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "K:          %d (finished with %d clusters)\n", run.K, run.Clusters)
	fmt.Fprintf(w, "Iterations: %d\n", run.Iterations)
	fmt.Fprintf(w, "Seed:       %d\n", run.Seed)
	fmt.Fprintf(w, "Stations:   %d\n", run.Stations)
	fmt.Fprintf(w, "Distortion: %.1f\n", run.Distortion)

	counts := make(map[int]int)
	for _, a := range assignments {
		counts[a.Cluster]++
	}
	for c := 0; c < run.Clusters; c++ {
		fmt.Fprintf(w, "  cluster %2d: %d stations\n", c, counts[c])
	}
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
