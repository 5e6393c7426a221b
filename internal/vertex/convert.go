package vertex

import (
	"github.com/oukeidos/promptaudit/internal/audit"
	"google.golang.org/genai"
)

// FromGenAI maps an SDK response onto the audit model. Absent optional
// structures stay absent (nil) so the flattener can apply its defaults.
func FromGenAI(resp *genai.GenerateContentResponse) *audit.Response {
	if resp == nil {
		return nil
	}
	out := &audit.Response{
		Text:         resp.Text(),
		ModelVersion: resp.ModelVersion,
	}
	if resp.UsageMetadata != nil {
		out.Usage = audit.UsageMetadata{
			PromptTokenCount:     resp.UsageMetadata.PromptTokenCount,
			CandidatesTokenCount: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokenCount:      resp.UsageMetadata.TotalTokenCount,
		}
	}
	for _, c := range resp.Candidates {
		if c == nil {
			continue
		}
		out.Candidates = append(out.Candidates, convertCandidate(c))
	}
	return out
}

func convertCandidate(c *genai.Candidate) audit.Candidate {
	out := audit.Candidate{
		Index:         c.Index,
		FinishReason:  string(c.FinishReason),
		FinishMessage: c.FinishMessage,
	}
	for _, r := range c.SafetyRatings {
		if r == nil {
			continue
		}
		out.SafetyRatings = append(out.SafetyRatings, audit.SafetyRating{
			Category:         string(r.Category),
			Probability:      string(r.Probability),
			ProbabilityScore: r.ProbabilityScore,
			Severity:         string(r.Severity),
			SeverityScore:    r.SeverityScore,
			Blocked:          r.Blocked,
		})
	}
	if c.CitationMetadata != nil {
		out.Citations = make([]audit.Citation, 0, len(c.CitationMetadata.Citations))
		for _, cit := range c.CitationMetadata.Citations {
			if cit == nil {
				continue
			}
			converted := audit.Citation{
				StartIndex: cit.StartIndex,
				EndIndex:   cit.EndIndex,
				URI:        cit.URI,
				Title:      cit.Title,
				License:    cit.License,
			}
			if !cit.PublicationDate.IsZero() {
				date := cit.PublicationDate
				converted.PublicationDate = &date
			}
			out.Citations = append(out.Citations, converted)
		}
	}
	if gm := c.GroundingMetadata; gm != nil {
		grounding := &audit.GroundingMetadata{WebSearchQueries: gm.WebSearchQueries}
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil {
				continue
			}
			grounding.Chunks = append(grounding.Chunks, audit.GroundingChunk{Source: chunkSource(chunk)})
		}
		out.Grounding = grounding
	}
	return out
}

// chunkSource picks the populated variant of a grounding chunk. Web takes
// precedence when both are set; nil means neither is.
func chunkSource(chunk *genai.GroundingChunk) audit.ChunkSource {
	switch {
	case chunk.Web != nil:
		return audit.WebSource{URI: chunk.Web.URI, Title: chunk.Web.Title}
	case chunk.RetrievedContext != nil:
		return audit.RetrievedContextSource{URI: chunk.RetrievedContext.URI, Title: chunk.RetrievedContext.Title}
	default:
		return nil
	}
}
