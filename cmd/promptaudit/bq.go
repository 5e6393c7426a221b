package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/oukeidos/promptaudit/internal/cleanup"
	"github.com/oukeidos/promptaudit/internal/config"
	"github.com/oukeidos/promptaudit/internal/logger"
	"github.com/oukeidos/promptaudit/internal/vertex"
	"github.com/oukeidos/promptaudit/internal/warehouse"
	"github.com/spf13/cobra"
)

func newBQCmd(g *globalOptions) *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "bq",
		Short: "Generate once and stream the audit row into BigQuery",
		Example: `  promptaudit bq
  promptaudit bq --prompt "Summarize the water cycle." --table prompt_audit_dev`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBQ(cmd, g, &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addRunFlags(cmd, &opts)
	config.BindFlags(cmd.Flags(), "project", "location", "model", "dataset", "table", "spool-dir")
	return cmd
}

func runBQ(cmd *cobra.Command, g *globalOptions, opts *runOptions) error {
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

	startTime := time.Now()
	ctx, stop := signalContext()
	defer stop()

	gen, err := newGenerator(ctx, vertex.Options{
		Project:  cfg.Project,
		Location: cfg.Location,
		Model:    cfg.Model,
		Timeout:  opts.timeout,
	})
	if err != nil {
		return err
	}
	wh, err := newWarehouse(ctx, warehouse.Options{
		Project:  cfg.Project,
		Dataset:  cfg.Dataset,
		Table:    cfg.Table,
		SpoolDir: cfg.SpoolDir,
	})
	if err != nil {
		return err
	}
	cleanup.Register("bigquery client", wh.Close)

	created, err := wh.EnsureTable(ctx)
	if err != nil {
		return canceled(ctx, err)
	}
	if created {
		logger.Info("Created table", "table", wh.TableRef())
	}

	row, err := generate(ctx, gen, opts.prompt)
	if err != nil {
		return canceled(ctx, err)
	}

	insertID := newInsertID()
	report, err := wh.Insert(ctx, row, insertID)
	if err != nil {
		return canceled(ctx, err)
	}

	out := cmd.OutOrStdout()
	if report.OK() {
		logger.Debug("Row inserted", "table", wh.TableRef(), "insert_id", insertID)
		fmt.Fprintln(out, "Row inserted successfully.")
	} else {
		fmt.Fprintf(out, "Encountered errors while inserting row: %s\n", strings.Join(report.RowErrors, "; "))
		if report.SpoolPath != "" {
			fmt.Fprintf(out, "Row saved to %s (replay with: promptaudit replay %s)\n", report.SpoolPath, report.SpoolPath)
		}
	}

	printUsageStats(out, row.Usage(), time.Since(startTime), gen.Model())
	return nil
}
