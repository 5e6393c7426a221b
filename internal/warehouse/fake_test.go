package warehouse

import (
	"context"

	"cloud.google.com/go/bigquery"
)

type fakeTable struct {
	metadata    *bigquery.TableMetadata
	metadataErr error
	createErr   error
	putErr      error

	metadataCalls int
	created       []*bigquery.TableMetadata
	puts          []any
}

func (f *fakeTable) Metadata(context.Context) (*bigquery.TableMetadata, error) {
	f.metadataCalls++
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	return f.metadata, nil
}

func (f *fakeTable) Create(_ context.Context, md *bigquery.TableMetadata) error {
	f.created = append(f.created, md)
	if f.createErr != nil {
		return f.createErr
	}
	// Later lookups see the new table.
	f.metadata = md
	f.metadataErr = nil
	return nil
}

func (f *fakeTable) Put(_ context.Context, src any) error {
	f.puts = append(f.puts, src)
	return f.putErr
}

func newTestSink(table tableAPI, spoolDir string) *Sink {
	return &Sink{table: table, ref: "demo.gemini_audit.prompt_audit", spoolDir: spoolDir}
}
