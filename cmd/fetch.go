package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/overcast-analytics/climate-cli/internal/fetcher"
	"github.com/overcast-analytics/climate-cli/internal/ghcn"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download GHCN-M temperature archives",
	Long:  "Downloads the quality-controlled adjusted GHCN-M tmax and tmin archives over FTP and unpacks them into the data directory.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := os.MkdirAll(cfg.GHCN.DataDir, 0o755); err != nil {
			return eris.Wrapf(err, "fetch: create data dir %s", cfg.GHCN.DataDir)
		}

		timeout, _ := cmd.Flags().GetDuration("timeout")
		f := fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: timeout})

		g, ctx := errgroup.WithContext(ctx)
		for _, element := range []string{ghcn.ElementTMax, ghcn.ElementTMin} {
			g.Go(func() error {
				return fetchElement(ctx, f, element)
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "fetch")
		}

		fmt.Printf("GHCN archives unpacked into %s\n", cfg.GHCN.DataDir)
		return nil
	},
}

// fetchElement downloads and unpacks one element's archive.
func fetchElement(ctx context.Context, f fetcher.Fetcher, element string) error {
	name := fmt.Sprintf("ghcnm.%s.latest.qca.tar.gz", element)
	url := cfg.GHCN.BaseURL + "/" + name
	archivePath := filepath.Join(cfg.GHCN.DataDir, name)

	log := zap.L().With(zap.String("element", element))
	log.Info("downloading archive", zap.String("url", url))

	n, err := f.DownloadToFile(ctx, url, archivePath)
	if err != nil {
		return eris.Wrapf(err, "download %s", element)
	}
	log.Info("archive downloaded", zap.Int64("bytes", n))

	files, err := fetcher.ExtractTarGz(archivePath, cfg.GHCN.DataDir)
	if err != nil {
		return eris.Wrapf(err, "unpack %s", element)
	}
	log.Info("archive unpacked", zap.Int("files", len(files)))

	return nil
}

func init() {
	fetchCmd.Flags().Duration("timeout", 5*time.Minute, "FTP dial timeout")
	rootCmd.AddCommand(fetchCmd)
}
