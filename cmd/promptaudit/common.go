package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oukeidos/promptaudit/internal/apperrors"
	"github.com/oukeidos/promptaudit/internal/audit"
	"github.com/oukeidos/promptaudit/internal/cleanup"
	"github.com/oukeidos/promptaudit/internal/config"
	"github.com/oukeidos/promptaudit/internal/filelog"
	"github.com/oukeidos/promptaudit/internal/files"
	"github.com/oukeidos/promptaudit/internal/logger"
	"github.com/oukeidos/promptaudit/internal/pricing"
	"github.com/oukeidos/promptaudit/internal/vertex"
	"github.com/oukeidos/promptaudit/internal/warehouse"
	"github.com/spf13/cobra"
)

type auditWarehouse interface {
	EnsureTable(ctx context.Context) (bool, error)
	Insert(ctx context.Context, row *audit.Row, insertID string) (*warehouse.InsertReport, error)
	TableRef() string
	Close() error
}

type auditLog interface {
	Write(row *audit.Row) error
	Path() string
	Close() error
}

// Constructors are variables so tests can substitute fakes.
var (
	newGenerator = func(ctx context.Context, opts vertex.Options) (vertex.Generator, error) {
		return vertex.NewClient(ctx, opts)
	}
	newWarehouse = func(ctx context.Context, opts warehouse.Options) (auditWarehouse, error) {
		return warehouse.NewSink(ctx, opts)
	}
	newAuditLog = func(opts filelog.Options) (auditLog, error) {
		return filelog.NewSink(opts)
	}
	newInsertID = warehouse.NewInsertID
	now         = time.Now
)

func setupLogging(g *globalOptions) error {
	var jsonl io.Writer
	if g.logFile != "" {
		if err := files.RejectSymlinkPath(g.logFile); err != nil {
			return err
		}
		f, err := os.OpenFile(g.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register("diagnostic log", f.Close)
		jsonl = f
	}
	logger.Init(logger.LevelFor(g.debug), jsonl)
	return nil
}

// loadConfig resolves settings for cmd: env file, environment, then the
// override flags registered on cmd.
func loadConfig(cmd *cobra.Command, g *globalOptions) (*config.Config, error) {
	mustExist := cmd.Flags().Changed("env-file")
	cfg, err := config.Load(g.envFile, mustExist)
	if err != nil {
		return nil, err
	}
	config.ApplyFlags(cmd.Flags(), cfg)
	return cfg, nil
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVar(&opts.prompt, "prompt", audit.DefaultPrompt, "Prompt to send")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", vertex.DefaultTimeout, "Timeout for the model call")
}

// generate issues the prompt and flattens the answer into an audit row.
func generate(ctx context.Context, gen vertex.Generator, prompt string) (*audit.Row, error) {
	logger.Info("Sending prompt", "model", gen.Model())
	resp, err := gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	row, err := audit.Flatten(prompt, resp, now())
	if err != nil {
		return nil, err
	}
	logger.Info("Response received",
		"candidates", len(row.Candidates),
		"prompt_token_count", row.PromptTokenCount,
		"candidates_token_count", row.CandidatesTokenCount,
		"total_token_count", row.TotalTokenCount,
	)
	return row, nil
}

func printUsageStats(w io.Writer, usage audit.UsageRecord, duration time.Duration, model string) {
	fmt.Fprintln(w, "\n--- Execution Stats ---")
	fmt.Fprintf(w, "Time: %s\n", duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Model: %s\n", model)
	if usage.TotalTokenCount <= 0 {
		return
	}
	fmt.Fprintf(w, "Tokens: In=%d, Out=%d, Total=%d\n",
		usage.PromptTokenCount, usage.CandidatesTokenCount, usage.TotalTokenCount)
	cost, thinking := pricing.Estimate(model, usage)
	fmt.Fprintf(w, "Estimated Cost: $%.5f (Thinking Tokens: %d)\n", cost, thinking)
}

// canceled rewrites err when the run was interrupted by a signal.
func canceled(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		logger.Warn("Run canceled")
		return apperrors.New(apperrors.KindTransient, "Canceled.", err)
	}
	return err
}

func causeOf(err error) error {
	if cause := errors.Unwrap(err); cause != nil {
		return cause
	}
	return err
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
