package vertex

import (
	"context"

	"github.com/oukeidos/promptaudit/internal/audit"
)

// MockGenerator for testing
type MockGenerator struct {
	Response   *audit.Response
	Error      error
	ModelID    string
	LastPrompt string
	Calls      int
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (*audit.Response, error) {
	m.Calls++
	m.LastPrompt = prompt
	return m.Response, m.Error
}

func (m *MockGenerator) Model() string {
	return m.ModelID
}
