package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/oukeidos/promptaudit/internal/cleanup"
	"github.com/oukeidos/promptaudit/internal/config"
	"github.com/oukeidos/promptaudit/internal/logger"
	"github.com/oukeidos/promptaudit/internal/warehouse"
	"github.com/spf13/cobra"
)

func newReplayCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <spooled.json>...",
		Short: "Re-insert rows that were spooled after a failed insert",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, g, args)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	config.BindFlags(cmd.Flags(), "project", "dataset", "table")
	return cmd
}

// runReplay inserts each spooled row with its original insert ID, so rows
// that did reach the table are deduplicated by BigQuery. Files are removed
// only after a clean insert.
func runReplay(cmd *cobra.Command, g *globalOptions, paths []string) error {
	if err := setupLogging(g); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}
	if err := cfg.ValidateWarehouse(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	wh, err := newWarehouse(ctx, warehouse.Options{
		Project: cfg.Project,
		Dataset: cfg.Dataset,
		Table:   cfg.Table,
	})
	if err != nil {
		return err
	}
	cleanup.Register("bigquery client", wh.Close)

	if _, err := wh.EnsureTable(ctx); err != nil {
		return canceled(ctx, err)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range paths {
		row, insertID, err := warehouse.ReadSpool(path)
		if err != nil {
			logger.Error("Skipping spool file", "path", path, "error", err)
			failed++
			continue
		}
		report, err := wh.Insert(ctx, row, insertID)
		if err != nil {
			return canceled(ctx, err)
		}
		if !report.OK() {
			fmt.Fprintf(out, "%s: %s\n", path, strings.Join(report.RowErrors, "; "))
			failed++
			continue
		}
		if err := os.Remove(path); err != nil {
			logger.Warn("Replayed row but could not remove spool file", "path", path, "error", err)
		}
		fmt.Fprintf(out, "%s: replayed\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d spooled rows were not replayed", failed, len(paths))
	}
	return nil
}
