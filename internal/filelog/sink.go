// Package filelog appends human-readable audit blocks to a size-rotated
// text file.
package filelog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oukeidos/promptaudit/internal/audit"
	"github.com/oukeidos/promptaudit/internal/files"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Sink struct {
	log  *logrus.Logger
	out  *trackingWriter
	path string
	now  func() time.Time
}

// NewSink opens (lazily, on first write) the rotating file at opts.Path.
// Paths that resolve through a symlink are refused.
func NewSink(opts Options) (*Sink, error) {
	if err := files.RejectSymlinkPath(opts.Path); err != nil {
		return nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
		LocalTime:  true,
	}
	return newSink(rotator, opts.Path), nil
}

func newSink(w io.Writer, path string) *Sink {
	out := &trackingWriter{w: w}
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&LineFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return &Sink{log: l, out: out, path: path, now: time.Now}
}

func (s *Sink) Path() string {
	return s.path
}

// Write appends one audit block for row: the prompt, the generated text,
// the token counts and then each candidate, numbered from 1.
func (s *Sink) Write(row *audit.Row) error {
	if row == nil {
		return fmt.Errorf("nil row")
	}
	s.out.reset()

	s.info("Input Prompt: " + row.Prompt)
	s.info("Generated Content:")
	s.info(row.Response)
	if err := s.infoJSON("Metadata", row.Usage()); err != nil {
		return err
	}
	for i, c := range row.Candidates {
		if err := s.infoJSON(fmt.Sprintf("Candidate %d", i+1), c); err != nil {
			return err
		}
	}
	if err := s.out.err(); err != nil {
		return fmt.Errorf("failed to write audit log %s: %w", s.path, err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (s *Sink) Close() error {
	if c, ok := s.out.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Sink) info(msg string) {
	s.log.WithTime(s.now()).Info(msg)
}

func (s *Sink) infoJSON(title string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", title, err)
	}
	s.info(title + ":\n" + string(bytes.TrimRight(buf.Bytes(), "\n")))
	return nil
}

// trackingWriter remembers the first write error, which logrus would
// otherwise only report on stderr.
type trackingWriter struct {
	mu    sync.Mutex
	w     io.Writer
	first error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.mu.Lock()
		if t.first == nil {
			t.first = err
		}
		t.mu.Unlock()
	}
	return n, err
}

func (t *trackingWriter) reset() {
	t.mu.Lock()
	t.first = nil
	t.mu.Unlock()
}

func (t *trackingWriter) err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.first
}
