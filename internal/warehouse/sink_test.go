package warehouse

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/oukeidos/promptaudit/internal/apperrors"
	"github.com/oukeidos/promptaudit/internal/audit"
	"google.golang.org/api/googleapi"
)

func notFound() error {
	return &googleapi.Error{Code: 404, Message: "Not found: Table demo:gemini_audit.prompt_audit"}
}

func sampleRow(t *testing.T) *audit.Row {
	t.Helper()
	row, err := audit.Flatten(audit.DefaultPrompt, &audit.Response{
		Text:  "Once upon a time",
		Usage: audit.UsageMetadata{PromptTokenCount: 8, CandidatesTokenCount: 120, TotalTokenCount: 128},
		Candidates: []audit.Candidate{{
			Index:        0,
			FinishReason: "STOP",
			SafetyRatings: []audit.SafetyRating{{
				Category: "HARM_CATEGORY_HARASSMENT", Probability: "NEGLIGIBLE", ProbabilityScore: 0.05,
				Severity: "HARM_SEVERITY_NEGLIGIBLE", SeverityScore: 0.02,
			}},
		}},
	}, time.Date(2024, 10, 1, 12, 30, 45, 123456000, time.UTC))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	return row
}

func TestEnsureTable_CreatesWhenAbsent(t *testing.T) {
	table := &fakeTable{metadataErr: notFound()}
	s := newTestSink(table, "")

	created, err := s.EnsureTable(context.Background())
	if err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if !created || len(table.created) != 1 {
		t.Fatalf("expected one create, created=%v calls=%d", created, len(table.created))
	}

	got, err := table.created[0].Schema.ToJSONFields()
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Schema().ToJSONFields()
	if string(got) != string(want) {
		t.Fatalf("created schema differs:\n%s\nwant:\n%s", got, want)
	}
}

func TestEnsureTable_ExistingUntouched(t *testing.T) {
	table := &fakeTable{metadata: &bigquery.TableMetadata{Schema: Schema()}}
	s := newTestSink(table, "")

	created, err := s.EnsureTable(context.Background())
	if err != nil || created {
		t.Fatalf("expected no-op, created=%v err=%v", created, err)
	}
	if len(table.created) != 0 {
		t.Fatalf("existing table must not be recreated")
	}
}

func TestEnsureTable_TwiceCreatesOnce(t *testing.T) {
	table := &fakeTable{metadataErr: notFound()}
	s := newTestSink(table, "")

	for i := 0; i < 2; i++ {
		if _, err := s.EnsureTable(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
	if len(table.created) != 1 {
		t.Fatalf("expected exactly one create, got %d", len(table.created))
	}
}

func TestEnsureTable_ConcurrentCreateCountsAsExisting(t *testing.T) {
	table := &fakeTable{metadataErr: notFound(), createErr: &googleapi.Error{Code: 409}}
	s := newTestSink(table, "")

	created, err := s.EnsureTable(context.Background())
	if err != nil || created {
		t.Fatalf("expected conflict to be tolerated, created=%v err=%v", created, err)
	}
}

func TestEnsureTable_DoesNotMaskOtherErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind apperrors.Kind
	}{
		{"permission denied", &googleapi.Error{Code: 403, Message: "Access Denied"}, apperrors.KindAuth},
		{"quota", &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}}}, apperrors.KindRateLimit},
		{"server", &googleapi.Error{Code: 503}, apperrors.KindTransient},
		{"transport", errors.New("dial tcp: connection refused"), apperrors.KindTransient},
		{"deadline", context.DeadlineExceeded, apperrors.KindTransient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := &fakeTable{metadataErr: tc.err}
			s := newTestSink(table, "")

			created, err := s.EnsureTable(context.Background())
			if err == nil || created {
				t.Fatalf("expected failure, created=%v err=%v", created, err)
			}
			if kind, _ := apperrors.KindOf(err); kind != tc.kind {
				t.Fatalf("kind = %s, want %s", kind, tc.kind)
			}
			if len(table.created) != 0 {
				t.Fatalf("create must not be attempted after %s", tc.name)
			}
		})
	}
}

func TestEnsureTable_CreateFailureClassified(t *testing.T) {
	table := &fakeTable{metadataErr: notFound(), createErr: &googleapi.Error{Code: 404, Message: "Not found: Dataset demo:gemini_audit"}}
	s := newTestSink(table, "")

	_, err := s.EnsureTable(context.Background())
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found for missing dataset, got %v", err)
	}
}

func TestMissingColumns(t *testing.T) {
	live := bigquery.Schema{
		{Name: "timestamp", Type: bigquery.TimestampFieldType},
		{Name: "prompt", Type: bigquery.StringFieldType},
		{Name: "candidates", Type: bigquery.RecordFieldType, Repeated: true, Schema: bigquery.Schema{
			{Name: "index", Type: bigquery.IntegerFieldType},
		}},
	}
	missing := missingColumns(Schema(), live)
	joined := strings.Join(missing, ",")
	for _, want := range []string{"response", "total_token_count", "candidates.safety_ratings", "candidates.grounding_metadata"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %s in %v", want, missing)
		}
	}
	if strings.Contains(joined, "candidates.index") || strings.Contains(joined, "prompt,") {
		t.Errorf("present columns reported missing: %v", missing)
	}
	if got := missingColumns(Schema(), Schema()); len(got) != 0 {
		t.Errorf("identical schema reported missing %v", got)
	}
}

func TestInsert_Success(t *testing.T) {
	table := &fakeTable{}
	s := newTestSink(table, "")
	row := sampleRow(t)

	report, err := s.Insert(context.Background(), row, "0192-id")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !report.OK() || report.InsertID != "0192-id" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(table.puts) != 1 {
		t.Fatalf("expected one put, got %d", len(table.puts))
	}
	saver, ok := table.puts[0].(bigquery.ValueSaver)
	if !ok {
		t.Fatalf("put source is %T, want ValueSaver", table.puts[0])
	}
	_, id, err := saver.Save()
	if err != nil || id != "0192-id" {
		t.Fatalf("saver insert id = %q err=%v", id, err)
	}
}

func TestInsert_RowErrorsReportedAndSpooled(t *testing.T) {
	spoolDir := filepath.Join(t.TempDir(), "spool")
	table := &fakeTable{putErr: bigquery.PutMultiError{{
		InsertID: "0192-id",
		RowIndex: 0,
		Errors:   bigquery.MultiError{errors.New("no such field: extra")},
	}}}
	s := newTestSink(table, spoolDir)
	row := sampleRow(t)

	report, err := s.Insert(context.Background(), row, "0192-id")
	if err != nil {
		t.Fatalf("row errors must not fail Insert: %v", err)
	}
	if report.OK() || len(report.RowErrors) != 1 || !strings.Contains(report.RowErrors[0], "no such field: extra") {
		t.Fatalf("unexpected row errors: %+v", report.RowErrors)
	}
	if report.SpoolPath != filepath.Join(spoolDir, "0192-id.json") {
		t.Fatalf("SpoolPath = %q", report.SpoolPath)
	}

	replayed, id, err := ReadSpool(report.SpoolPath)
	if err != nil {
		t.Fatalf("ReadSpool: %v", err)
	}
	if id != "0192-id" {
		t.Fatalf("spooled insert id = %q", id)
	}
	if replayed.Prompt != row.Prompt || replayed.TotalTokenCount != 128 || len(replayed.Candidates) != 1 {
		t.Fatalf("spooled row differs: %+v", replayed)
	}
	if !replayed.Timestamp.Equal(row.Timestamp) {
		t.Fatalf("timestamp not preserved: %v vs %v", replayed.Timestamp, row.Timestamp)
	}
}

func TestInsert_RequestFailure(t *testing.T) {
	spoolDir := t.TempDir()
	table := &fakeTable{putErr: &googleapi.Error{Code: 403, Message: "Access Denied"}}
	s := newTestSink(table, spoolDir)

	report, err := s.Insert(context.Background(), sampleRow(t), "0192-id")
	if report != nil {
		t.Fatalf("expected nil report on request failure")
	}
	if kind, _ := apperrors.KindOf(err); kind != apperrors.KindAuth {
		t.Fatalf("kind = %v, want auth (err=%v)", kind, err)
	}
	if _, statErr := os.Stat(filepath.Join(spoolDir, "0192-id.json")); statErr != nil {
		t.Fatalf("expected row to be spooled: %v", statErr)
	}
}

func TestInsert_NilRow(t *testing.T) {
	s := newTestSink(&fakeTable{}, "")
	if _, err := s.Insert(context.Background(), nil, "id"); err == nil {
		t.Fatalf("expected error for nil row")
	}
}

func TestNewInsertID(t *testing.T) {
	a, b := NewInsertID(), NewInsertID()
	if a == b || len(a) != 36 {
		t.Fatalf("unexpected ids %q %q", a, b)
	}
}

func TestSchemaJSON(t *testing.T) {
	data, err := Schema().ToJSONFields()
	if err != nil {
		t.Fatal(err)
	}
	var fields []map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range fields {
		names = append(names, f["name"].(string))
	}
	want := "timestamp,prompt,response,prompt_token_count,candidates_token_count,total_token_count,candidates"
	if strings.Join(names, ",") != want {
		t.Fatalf("top-level columns = %v", names)
	}
}

func TestReadSpool_InsertIDFromName(t *testing.T) {
	dir := t.TempDir()
	row := sampleRow(t)
	first, err := writeSpool(dir, "run_a", row)
	if err != nil {
		t.Fatal(err)
	}
	second, err := writeSpool(dir, "run_a", row)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(second) != "run_a_1.json" {
		t.Fatalf("collision path = %q", second)
	}

	for _, path := range []string{first, second} {
		_, id, err := ReadSpool(path)
		if err != nil {
			t.Fatalf("ReadSpool(%s): %v", path, err)
		}
		if id != "run_a" {
			t.Errorf("ReadSpool(%s) id = %q, want run_a", path, id)
		}
	}
}
