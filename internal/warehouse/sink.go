package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"github.com/oukeidos/promptaudit/internal/apperrors"
	"github.com/oukeidos/promptaudit/internal/audit"
	"github.com/oukeidos/promptaudit/internal/logger"
	"github.com/oukeidos/promptaudit/internal/version"
	"google.golang.org/api/option"
)

type Options struct {
	Project string
	Dataset string
	Table   string
	// SpoolDir, when set, receives rows that could not be inserted.
	SpoolDir      string
	ClientOptions []option.ClientOption
}

// Sink writes audit rows to one table.
type Sink struct {
	table    tableAPI
	ref      string
	spoolDir string
	closeFn  func() error
}

// InsertReport describes a completed insert call. RowErrors holds the
// per-row messages BigQuery returned; they do not make Insert fail.
type InsertReport struct {
	InsertID  string
	RowErrors []string
	SpoolPath string
}

func (r *InsertReport) OK() bool {
	return len(r.RowErrors) == 0
}

// NewSink opens a BigQuery client with Application Default Credentials.
func NewSink(ctx context.Context, opts Options) (*Sink, error) {
	clientOpts := append([]option.ClientOption{option.WithUserAgent(version.UserAgent())}, opts.ClientOptions...)
	client, err := bigquery.NewClient(ctx, opts.Project, clientOpts...)
	if err != nil {
		return nil, apperrors.New(apperrors.KindAuth, "Failed to initialize BigQuery client. Check Application Default Credentials.", err)
	}
	return &Sink{
		table:    bqTable{t: client.Dataset(opts.Dataset).Table(opts.Table)},
		ref:      opts.Project + "." + opts.Dataset + "." + opts.Table,
		spoolDir: opts.SpoolDir,
		closeFn:  client.Close,
	}, nil
}

func (s *Sink) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

func (s *Sink) TableRef() string {
	return s.ref
}

// EnsureTable creates the table with Schema() when it does not exist.
// An existing table is never altered. Errors other than "not found" from
// the existence check are returned rather than treated as absence.
func (s *Sink) EnsureTable(ctx context.Context) (created bool, err error) {
	md, err := s.table.Metadata(ctx)
	if err == nil {
		if missing := missingColumns(Schema(), md.Schema); len(missing) > 0 {
			logger.Warn("Existing table lacks declared columns; inserts may be rejected",
				"table", s.ref, "missing", strings.Join(missing, ","))
		}
		logger.Debug("Table exists", "table", s.ref)
		return false, nil
	}
	if !isNotFound(err) {
		return false, classifyAPIError("table lookup", err)
	}

	logger.Info("Creating table", "table", s.ref)
	err = s.table.Create(ctx, &bigquery.TableMetadata{Schema: Schema()})
	switch {
	case isConflict(err):
		logger.Debug("Table was created concurrently", "table", s.ref)
		return false, nil
	case err != nil:
		return false, classifyAPIError("create table", err)
	}
	return true, nil
}

// Insert streams row as a single-row insert. Row-level rejections are
// reported in the InsertReport; only request-level failures are errors.
func (s *Sink) Insert(ctx context.Context, row *audit.Row, insertID string) (*InsertReport, error) {
	if row == nil {
		return nil, apperrors.Validation(fmt.Errorf("nil row"))
	}
	report := &InsertReport{InsertID: insertID}

	err := s.table.Put(ctx, &rowSaver{row: row, insertID: insertID})
	if err == nil {
		logger.Debug("Row inserted", "table", s.ref, "insert_id", insertID)
		return report, nil
	}

	var multi bigquery.PutMultiError
	if errors.As(err, &multi) {
		report.RowErrors = rowErrorMessages(multi)
		report.SpoolPath = s.spool(row, insertID)
		return report, nil
	}

	s.spool(row, insertID)
	return nil, classifyAPIError("insert", err)
}

func rowErrorMessages(multi bigquery.PutMultiError) []string {
	var msgs []string
	for _, rowErr := range multi {
		if len(rowErr.Errors) == 0 {
			msgs = append(msgs, fmt.Sprintf("row %d: rejected", rowErr.RowIndex))
			continue
		}
		for _, e := range rowErr.Errors {
			msgs = append(msgs, fmt.Sprintf("row %d: %v", rowErr.RowIndex, e))
		}
	}
	return msgs
}

func (s *Sink) spool(row *audit.Row, insertID string) string {
	if s.spoolDir == "" {
		return ""
	}
	path, err := writeSpool(s.spoolDir, insertID, row)
	if err != nil {
		logger.Error("Failed to spool row", "dir", s.spoolDir, "error", err)
		return ""
	}
	logger.Warn("Row spooled for replay", "path", path)
	return path
}

// NewInsertID returns a time-ordered ID used as the streaming dedup key.
func NewInsertID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
