package audit

import (
	"errors"
	"fmt"
	"time"

	"github.com/oukeidos/promptaudit/internal/apperrors"
)

// ErrNoChunkSource is returned by Flatten when a grounding chunk carries
// neither a web nor a retrieved-context source.
var ErrNoChunkSource = errors.New("grounding chunk has no web or retrieved-context source")

// Flatten converts resp into a Row stamped with at. It has no side effects.
// A malformed grounding chunk fails the whole row; no partial row is returned.
func Flatten(prompt string, resp *Response, at time.Time) (*Row, error) {
	if resp == nil {
		return nil, apperrors.Validation(fmt.Errorf("no response to flatten"))
	}

	row := &Row{
		Timestamp:            at,
		Prompt:               prompt,
		Response:             resp.Text,
		PromptTokenCount:     resp.Usage.PromptTokenCount,
		CandidatesTokenCount: resp.Usage.CandidatesTokenCount,
		TotalTokenCount:      resp.Usage.TotalTokenCount,
		Candidates:           make([]CandidateRecord, 0, len(resp.Candidates)),
	}

	for i, c := range resp.Candidates {
		rec, err := flattenCandidate(c)
		if err != nil {
			return nil, apperrors.New(apperrors.KindValidation,
				fmt.Sprintf("Malformed grounding metadata in candidate %d.", i),
				fmt.Errorf("candidate %d: %w", i, err))
		}
		row.Candidates = append(row.Candidates, rec)
	}
	return row, nil
}

func flattenCandidate(c Candidate) (CandidateRecord, error) {
	rec := CandidateRecord{
		Index:         c.Index,
		FinishReason:  c.FinishReason,
		FinishMessage: c.FinishMessage,
		SafetyRatings: flattenSafetyRatings(c.SafetyRatings),
		Citations:     flattenCitations(c.Citations),
		GroundingMetadata: GroundingRecord{
			WebSearchQueries: []string{},
			GroundingChunks:  []GroundingChunkRecord{},
		},
	}

	if c.Grounding == nil {
		return rec, nil
	}
	if len(c.Grounding.WebSearchQueries) > 0 {
		rec.GroundingMetadata.WebSearchQueries = append([]string(nil), c.Grounding.WebSearchQueries...)
	}
	for j, chunk := range c.Grounding.Chunks {
		chunkRec, err := flattenChunk(chunk)
		if err != nil {
			return CandidateRecord{}, fmt.Errorf("grounding chunk %d: %w", j, err)
		}
		rec.GroundingMetadata.GroundingChunks = append(rec.GroundingMetadata.GroundingChunks, chunkRec)
	}
	return rec, nil
}

func flattenChunk(chunk GroundingChunk) (GroundingChunkRecord, error) {
	switch src := chunk.Source.(type) {
	case WebSource:
		return GroundingChunkRecord{URI: src.URI, Title: src.Title}, nil
	case RetrievedContextSource:
		return GroundingChunkRecord{URI: src.URI, Title: src.Title}, nil
	case nil:
		return GroundingChunkRecord{}, ErrNoChunkSource
	default:
		return GroundingChunkRecord{}, fmt.Errorf("unsupported grounding chunk source %T", src)
	}
}

func flattenSafetyRatings(ratings []SafetyRating) []SafetyRatingRecord {
	out := make([]SafetyRatingRecord, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, SafetyRatingRecord{
			Category:         r.Category,
			Probability:      r.Probability,
			ProbabilityScore: r.ProbabilityScore,
			Severity:         r.Severity,
			SeverityScore:    r.SeverityScore,
			Blocked:          r.Blocked,
		})
	}
	return out
}

func flattenCitations(citations []Citation) []CitationRecord {
	out := make([]CitationRecord, 0, len(citations))
	for _, c := range citations {
		rec := CitationRecord{
			StartIndex: c.StartIndex,
			EndIndex:   c.EndIndex,
			URI:        c.URI,
			Title:      c.Title,
			License:    c.License,
		}
		if c.PublicationDate != nil {
			date := c.PublicationDate.String()
			rec.PublicationDate = &date
		}
		out = append(out, rec)
	}
	return out
}
