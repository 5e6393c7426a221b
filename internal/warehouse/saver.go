package warehouse

import (
	"cloud.google.com/go/bigquery"
	"github.com/oukeidos/promptaudit/internal/audit"
)

// timestampLayout is accepted by the streaming API for TIMESTAMP columns.
const timestampLayout = "2006-01-02T15:04:05.999999Z07:00"

// rowSaver adapts an audit.Row to bigquery.ValueSaver. Values are sent
// as-is in the insertAll JSON body, so every key must be a column name.
type rowSaver struct {
	row      *audit.Row
	insertID string
}

var _ bigquery.ValueSaver = (*rowSaver)(nil)

func (s *rowSaver) Save() (map[string]bigquery.Value, string, error) {
	r := s.row
	candidates := make([]map[string]bigquery.Value, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		candidates = append(candidates, candidateValue(c))
	}
	return map[string]bigquery.Value{
		"timestamp":              r.Timestamp.UTC().Format(timestampLayout),
		"prompt":                 r.Prompt,
		"response":               r.Response,
		"prompt_token_count":     r.PromptTokenCount,
		"candidates_token_count": r.CandidatesTokenCount,
		"total_token_count":      r.TotalTokenCount,
		"candidates":             candidates,
	}, s.insertID, nil
}

func candidateValue(c audit.CandidateRecord) map[string]bigquery.Value {
	ratings := make([]map[string]bigquery.Value, 0, len(c.SafetyRatings))
	for _, r := range c.SafetyRatings {
		ratings = append(ratings, map[string]bigquery.Value{
			"category":          r.Category,
			"probability":       r.Probability,
			"probability_score": r.ProbabilityScore,
			"severity":          r.Severity,
			"severity_score":    r.SeverityScore,
			"blocked":           r.Blocked,
		})
	}

	citations := make([]map[string]bigquery.Value, 0, len(c.Citations))
	for _, cit := range c.Citations {
		var date bigquery.Value
		if cit.PublicationDate != nil {
			date = *cit.PublicationDate
		}
		citations = append(citations, map[string]bigquery.Value{
			"start_index":      cit.StartIndex,
			"end_index":        cit.EndIndex,
			"uri":              cit.URI,
			"title":            cit.Title,
			"license":          cit.License,
			"publication_date": date,
		})
	}

	chunks := make([]map[string]bigquery.Value, 0, len(c.GroundingMetadata.GroundingChunks))
	for _, ch := range c.GroundingMetadata.GroundingChunks {
		chunks = append(chunks, map[string]bigquery.Value{"uri": ch.URI, "title": ch.Title})
	}
	queries := c.GroundingMetadata.WebSearchQueries
	if queries == nil {
		queries = []string{}
	}

	return map[string]bigquery.Value{
		"index":          c.Index,
		"finish_reason":  c.FinishReason,
		"finish_message": c.FinishMessage,
		"safety_ratings": ratings,
		"citations":      citations,
		"grounding_metadata": map[string]bigquery.Value{
			"web_search_queries": queries,
			"grounding_chunks":   chunks,
		},
	}
}

