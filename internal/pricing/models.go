// Package pricing holds list prices used for the cost line in execution
// stats. Figures are USD per million tokens for text input/output on
// Vertex AI and are estimates only.
package pricing

import "github.com/oukeidos/promptaudit/internal/audit"

type Model struct {
	ID               string
	Label            string
	InputPerMillion  float64
	OutputPerMillion float64
}

var Models = []Model{
	{ID: "gemini-1.5-flash-002", Label: "Gemini 1.5 Flash", InputPerMillion: 0.075, OutputPerMillion: 0.30},
	{ID: "gemini-1.5-pro-002", Label: "Gemini 1.5 Pro", InputPerMillion: 1.25, OutputPerMillion: 5.00},
	{ID: "gemini-2.0-flash-001", Label: "Gemini 2.0 Flash", InputPerMillion: 0.10, OutputPerMillion: 0.40},
}

const (
	DefaultInputPerMillion  = 1.25
	DefaultOutputPerMillion = 5.00
)

// Lookup returns the price entry for modelID. Unknown models get the
// default entry and ok=false.
func Lookup(modelID string) (Model, bool) {
	for _, m := range Models {
		if m.ID == modelID {
			return m, true
		}
	}
	return Model{
		ID:               "default",
		Label:            "Default Gemini",
		InputPerMillion:  DefaultInputPerMillion,
		OutputPerMillion: DefaultOutputPerMillion,
	}, false
}

// Estimate prices one call. Tokens counted in the total but in neither the
// prompt nor the candidates (thinking tokens on newer models) are billed
// at the output rate.
func Estimate(modelID string, usage audit.UsageRecord) (cost float64, extraOutput int32) {
	extraOutput = usage.TotalTokenCount - (usage.PromptTokenCount + usage.CandidatesTokenCount)
	if extraOutput < 0 {
		extraOutput = 0
	}
	m, _ := Lookup(modelID)
	in := float64(usage.PromptTokenCount) / 1_000_000 * m.InputPerMillion
	out := float64(usage.CandidatesTokenCount+extraOutput) / 1_000_000 * m.OutputPerMillion
	return in + out, extraOutput
}
