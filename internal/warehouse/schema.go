// Package warehouse streams flattened audit rows into a BigQuery table,
// creating the table on first use.
package warehouse

import "cloud.google.com/go/bigquery"

// Schema is the table layout rows are written against. Column names match
// the JSON names of audit.Row.
func Schema() bigquery.Schema {
	return bigquery.Schema{
		{Name: "timestamp", Type: bigquery.TimestampFieldType},
		{Name: "prompt", Type: bigquery.StringFieldType},
		{Name: "response", Type: bigquery.StringFieldType},
		{Name: "prompt_token_count", Type: bigquery.IntegerFieldType},
		{Name: "candidates_token_count", Type: bigquery.IntegerFieldType},
		{Name: "total_token_count", Type: bigquery.IntegerFieldType},
		{Name: "candidates", Type: bigquery.RecordFieldType, Repeated: true, Schema: bigquery.Schema{
			{Name: "index", Type: bigquery.IntegerFieldType},
			{Name: "finish_reason", Type: bigquery.StringFieldType},
			{Name: "finish_message", Type: bigquery.StringFieldType},
			{Name: "safety_ratings", Type: bigquery.RecordFieldType, Repeated: true, Schema: bigquery.Schema{
				{Name: "category", Type: bigquery.StringFieldType},
				{Name: "probability", Type: bigquery.StringFieldType},
				{Name: "probability_score", Type: bigquery.FloatFieldType},
				{Name: "severity", Type: bigquery.StringFieldType},
				{Name: "severity_score", Type: bigquery.FloatFieldType},
				{Name: "blocked", Type: bigquery.BooleanFieldType},
			}},
			{Name: "citations", Type: bigquery.RecordFieldType, Repeated: true, Schema: bigquery.Schema{
				{Name: "start_index", Type: bigquery.IntegerFieldType},
				{Name: "end_index", Type: bigquery.IntegerFieldType},
				{Name: "uri", Type: bigquery.StringFieldType},
				{Name: "title", Type: bigquery.StringFieldType},
				{Name: "license", Type: bigquery.StringFieldType},
				{Name: "publication_date", Type: bigquery.DateFieldType},
			}},
			{Name: "grounding_metadata", Type: bigquery.RecordFieldType, Schema: bigquery.Schema{
				{Name: "web_search_queries", Type: bigquery.StringFieldType, Repeated: true},
				{Name: "grounding_chunks", Type: bigquery.RecordFieldType, Repeated: true, Schema: bigquery.Schema{
					{Name: "uri", Type: bigquery.StringFieldType},
					{Name: "title", Type: bigquery.StringFieldType},
				}},
			}},
		}},
	}
}

// missingColumns lists dotted paths of columns in want that have no
// counterpart in have. Types are not compared.
func missingColumns(want, have bigquery.Schema) []string {
	var missing []string
	var walk func(prefix string, want, have bigquery.Schema)
	walk = func(prefix string, want, have bigquery.Schema) {
		byName := make(map[string]*bigquery.FieldSchema, len(have))
		for _, f := range have {
			byName[f.Name] = f
		}
		for _, f := range want {
			path := prefix + f.Name
			got, ok := byName[f.Name]
			if !ok {
				missing = append(missing, path)
				continue
			}
			if len(f.Schema) > 0 {
				walk(path+".", f.Schema, got.Schema)
			}
		}
	}
	walk("", want, have)
	return missing
}
