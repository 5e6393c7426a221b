package main

import (
	"fmt"
	"time"

	"github.com/oukeidos/promptaudit/internal/cleanup"
	"github.com/oukeidos/promptaudit/internal/config"
	"github.com/oukeidos/promptaudit/internal/filelog"
	"github.com/oukeidos/promptaudit/internal/vertex"
	"github.com/spf13/cobra"
)

func newFileCmd(g *globalOptions) *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Generate once and append the audit block to a rotating log file",
		Example: `  promptaudit file
  promptaudit file --audit-log audit/gemini.log --model gemini-2.0-flash-001`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cmd, g, &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addRunFlags(cmd, &opts)
	config.BindFlags(cmd.Flags(), "project", "location", "model", "audit-log")
	return cmd
}

func runFile(cmd *cobra.Command, g *globalOptions, opts *runOptions) error {
	if err := setupLogging(g); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}
	if err := cfg.ValidateAuditLog(); err != nil {
		return err
	}

	startTime := time.Now()
	ctx, stop := signalContext()
	defer stop()

	sink, err := newAuditLog(filelog.Options{
		Path:       cfg.AuditLog.Path,
		MaxSizeMB:  cfg.AuditLog.MaxSizeMB,
		MaxBackups: cfg.AuditLog.MaxBackups,
		MaxAgeDays: cfg.AuditLog.MaxAgeDays,
		Compress:   cfg.AuditLog.Compress,
	})
	if err != nil {
		return err
	}
	cleanup.Register("audit log", sink.Close)

	gen, err := newGenerator(ctx, vertex.Options{
		Project:  cfg.Project,
		Location: cfg.Location,
		Model:    cfg.Model,
		Timeout:  opts.timeout,
	})
	if err != nil {
		return err
	}

	row, err := generate(ctx, gen, opts.prompt)
	if err != nil {
		return canceled(ctx, err)
	}
	if err := sink.Write(row); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logging complete. Check %s for details.\n", sink.Path())
	printUsageStats(out, row.Usage(), time.Since(startTime), gen.Model())
	return nil
}
