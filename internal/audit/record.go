package audit

import "time"

// Row is the flattened audit record. JSON field names are the warehouse
// column names; repeated fields are never nil so they encode as [].
type Row struct {
	Timestamp            time.Time         `json:"timestamp"`
	Prompt               string            `json:"prompt"`
	Response             string            `json:"response"`
	PromptTokenCount     int32             `json:"prompt_token_count"`
	CandidatesTokenCount int32             `json:"candidates_token_count"`
	TotalTokenCount      int32             `json:"total_token_count"`
	Candidates           []CandidateRecord `json:"candidates"`
}

type CandidateRecord struct {
	Index             int32                `json:"index"`
	FinishReason      string               `json:"finish_reason"`
	FinishMessage     string               `json:"finish_message"`
	SafetyRatings     []SafetyRatingRecord `json:"safety_ratings"`
	Citations         []CitationRecord     `json:"citations"`
	GroundingMetadata GroundingRecord      `json:"grounding_metadata"`
}

type SafetyRatingRecord struct {
	Category         string  `json:"category"`
	Probability      string  `json:"probability"`
	ProbabilityScore float32 `json:"probability_score"`
	Severity         string  `json:"severity"`
	SeverityScore    float32 `json:"severity_score"`
	Blocked          bool    `json:"blocked"`
}

type CitationRecord struct {
	StartIndex int32  `json:"start_index"`
	EndIndex   int32  `json:"end_index"`
	URI        string `json:"uri"`
	Title      string `json:"title"`
	License    string `json:"license"`
	// PublicationDate is YYYY-MM-DD, or nil when the source gave no date.
	PublicationDate *string `json:"publication_date"`
}

type GroundingRecord struct {
	WebSearchQueries []string               `json:"web_search_queries"`
	GroundingChunks  []GroundingChunkRecord `json:"grounding_chunks"`
}

type GroundingChunkRecord struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// UsageRecord is the token-count block written on its own by the file sink.
type UsageRecord struct {
	PromptTokenCount     int32 `json:"prompt_token_count"`
	CandidatesTokenCount int32 `json:"candidates_token_count"`
	TotalTokenCount      int32 `json:"total_token_count"`
}

// Usage returns the token counts of r.
func (r *Row) Usage() UsageRecord {
	return UsageRecord{
		PromptTokenCount:     r.PromptTokenCount,
		CandidatesTokenCount: r.CandidatesTokenCount,
		TotalTokenCount:      r.TotalTokenCount,
	}
}
