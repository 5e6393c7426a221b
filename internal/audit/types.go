// Package audit holds the provider-neutral view of a model response and
// flattens it into the record shape shared by every output sink.
package audit

import "cloud.google.com/go/civil"

// DefaultPrompt is the prompt issued when none is given on the command line.
const DefaultPrompt = "Write a story about a magic backpack."

// Response is a single model response reduced to the fields that are audited.
type Response struct {
	Text         string
	ModelVersion string
	Usage        UsageMetadata
	Candidates   []Candidate
}

// UsageMetadata holds token usage information.
type UsageMetadata struct {
	PromptTokenCount     int32
	CandidatesTokenCount int32
	TotalTokenCount      int32
}

// Candidate is one generated alternative.
type Candidate struct {
	Index         int32
	FinishReason  string
	FinishMessage string
	SafetyRatings []SafetyRating
	// Citations is nil when the response carried no citation metadata.
	Citations []Citation
	// Grounding is nil when the response carried no grounding metadata.
	Grounding *GroundingMetadata
}

type SafetyRating struct {
	Category         string
	Probability      string
	ProbabilityScore float32
	Severity         string
	SeverityScore    float32
	Blocked          bool
}

type Citation struct {
	StartIndex      int32
	EndIndex        int32
	URI             string
	Title           string
	License         string
	PublicationDate *civil.Date
}

type GroundingMetadata struct {
	WebSearchQueries []string
	Chunks           []GroundingChunk
}

// GroundingChunk attributes part of the answer to one source. Source is nil
// when the API populated none of the known variants.
type GroundingChunk struct {
	Source ChunkSource
}

// ChunkSource is implemented only by WebSource and RetrievedContextSource.
type ChunkSource interface {
	chunkSource()
}

// WebSource is a grounding chunk backed by a web search result.
type WebSource struct {
	URI   string
	Title string
}

// RetrievedContextSource is a grounding chunk backed by a retrieval corpus
// document.
type RetrievedContextSource struct {
	URI   string
	Title string
}

func (WebSource) chunkSource()              {}
func (RetrievedContextSource) chunkSource() {}
