package main

import (
	"fmt"
	"os"
	"time"

	"github.com/oukeidos/promptaudit/internal/cleanup"
	"github.com/oukeidos/promptaudit/internal/config"
	"github.com/oukeidos/promptaudit/internal/logger"
	"github.com/oukeidos/promptaudit/internal/version"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	envFile string
	debug   bool
	logFile string
}

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if err != nil {
		logger.Debug("Command failed", "cause", causeOf(err))
	}
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "promptaudit",
		Short: "Audit Gemini prompts and responses to BigQuery or a log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.envFile, "env-file", config.DefaultEnvFile, "Path to a .env file (a missing default file is ignored)")
	pf.BoolVar(&g.debug, "debug", false, "Enable debug logging")
	pf.StringVar(&g.logFile, "log-file", "", "Path to save machine-readable JSONL diagnostics")

	cmd.AddCommand(
		newBQCmd(g),
		newFileCmd(g),
		newReplayCmd(g),
		newSchemaCmd(),
		newAboutCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}

// runOptions are the per-run flags shared by bq and file.
type runOptions struct {
	prompt  string
	timeout time.Duration
}
