// Package logger is the process-wide diagnostic logger: a readable console
// handler on stderr and, optionally, a JSONL copy for machines. It never
// receives audited prompt or response text; that goes to the audit sinks.
package logger

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	globalLogger *slog.Logger
	isTerminal   = term.IsTerminal
	stderr       io.Writer = os.Stderr
)

func init() {
	Init(LevelInfo, nil)
}

// Init replaces the global logger. jsonl, when non-nil, receives one JSON
// object per record in addition to the console output.
func Init(level slog.Level, jsonl io.Writer) {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: RedactAttr,
	}

	useColor := jsonl == nil && stderrIsTerminal()
	var handler slog.Handler = NewPrettyHandler(stderr, opts, useColor)
	if jsonl != nil {
		handler = &multiHandler{
			handlers: []slog.Handler{handler, slog.NewJSONHandler(jsonl, opts)},
		}
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// LevelFor maps the --debug flag to a level.
func LevelFor(debug bool) slog.Level {
	if debug {
		return LevelDebug
	}
	return LevelInfo
}

func stderrIsTerminal() bool {
	f, ok := stderr.(*os.File)
	return ok && isTerminal(int(f.Fd()))
}

func Debug(msg string, args ...any) { globalLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { globalLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { globalLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { globalLogger.Error(msg, args...) }
