package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/overcast-analytics/climate-cli/internal/export"
	"github.com/overcast-analytics/climate-cli/internal/pipeline"
	"github.com/overcast-analytics/climate-cli/internal/store"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Run k-means clustering over local GHCN data",
	Long:  "Aggregates monthly temperature normals per station from the local GHCN files, clusters the stations, persists the run, and writes the cluster map.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.Cluster.Verbose = true
		}

		var st store.Store
		if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore {
			var err error
			st, err = store.Open(ctx, cfg.Store)
			if err != nil {
				return eris.Wrap(err, "cluster: open store")
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "cluster: migrate store")
			}
		}

		outcome, err := pipeline.New(cfg, st).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "cluster")
		}

		out, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "geojson":
			if err := export.WriteGeoJSON(out, outcome.Assignments); err != nil {
				return eris.Wrap(err, "cluster: export")
			}
		case "shapefile":
			if err := export.WriteShapefile(out, outcome.Assignments); err != nil {
				return eris.Wrap(err, "cluster: export")
			}
		default:
			return eris.Errorf("cluster: unknown output format %q", format)
		}

		fmt.Printf("Clustered %d stations into %d clusters (distortion %.1f), wrote %s\n",
			outcome.Run.Stations, outcome.Run.Clusters, outcome.Run.Distortion, out)
		return nil
	},
}

func init() {
	clusterCmd.Flags().BoolP("verbose", "v", false, "log distortion at each iteration")
	clusterCmd.Flags().String("out", "clusters.geojson", "output file path")
	clusterCmd.Flags().String("format", "geojson", "output format: geojson or shapefile")
	clusterCmd.Flags().Bool("no-store", false, "skip persisting the run")
	rootCmd.AddCommand(clusterCmd)
}
