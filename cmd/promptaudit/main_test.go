package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/oukeidos/promptaudit/internal/audit"
	"github.com/oukeidos/promptaudit/internal/cleanup"
	"github.com/oukeidos/promptaudit/internal/vertex"
	"github.com/oukeidos/promptaudit/internal/warehouse"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		t.Errorf("cleanup: %v", cleanupErr)
	}
	return buf.String(), err
}

type fakeWarehouse struct {
	created   bool
	ensureErr error
	report    *warehouse.InsertReport
	insertErr error

	ensureCalls int
	rows        []*audit.Row
	insertIDs   []string
	closed      bool
}

func (f *fakeWarehouse) EnsureTable(context.Context) (bool, error) {
	f.ensureCalls++
	return f.created, f.ensureErr
}

func (f *fakeWarehouse) Insert(_ context.Context, row *audit.Row, insertID string) (*warehouse.InsertReport, error) {
	f.rows = append(f.rows, row)
	f.insertIDs = append(f.insertIDs, insertID)
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if f.report != nil {
		return f.report, nil
	}
	return &warehouse.InsertReport{InsertID: insertID}, nil
}

func (f *fakeWarehouse) TableRef() string { return "demo-project.gemini_audit.prompt_audit" }

func (f *fakeWarehouse) Close() error {
	f.closed = true
	return nil
}

type stubs struct {
	genOpts       []vertex.Options
	warehouseOpts []warehouse.Options
}

// withStubs swaps the client constructors for fakes and restores them when
// the test ends.
func withStubs(t *testing.T, gen *vertex.MockGenerator, wh *fakeWarehouse) *stubs {
	t.Helper()
	s := &stubs{}

	prevGen, prevWH, prevID := newGenerator, newWarehouse, newInsertID
	newGenerator = func(_ context.Context, opts vertex.Options) (vertex.Generator, error) {
		s.genOpts = append(s.genOpts, opts)
		if gen.ModelID == "" {
			gen.ModelID = opts.Model
		}
		return gen, nil
	}
	newWarehouse = func(_ context.Context, opts warehouse.Options) (auditWarehouse, error) {
		s.warehouseOpts = append(s.warehouseOpts, opts)
		return wh, nil
	}
	newInsertID = func() string { return "test-insert-id" }
	t.Cleanup(func() {
		newGenerator, newWarehouse, newInsertID = prevGen, prevWH, prevID
	})

	t.Setenv("VERTEX_PROJECT_ID", "demo-project")
	return s
}

func storyResponse() *audit.Response {
	return &audit.Response{
		Text:  "Once upon a time, a backpack hummed.",
		Usage: audit.UsageMetadata{PromptTokenCount: 8, CandidatesTokenCount: 9, TotalTokenCount: 17},
		Candidates: []audit.Candidate{{
			FinishReason: "STOP",
			SafetyRatings: []audit.SafetyRating{{
				Category: "HARM_CATEGORY_HARASSMENT", Probability: "NEGLIGIBLE", ProbabilityScore: 0.125,
			}},
		}},
	}
}
