package vertex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oukeidos/promptaudit/internal/apperrors"
	"github.com/oukeidos/promptaudit/internal/audit"
	"github.com/oukeidos/promptaudit/internal/logger"
	"google.golang.org/genai"
)

// DefaultTimeout bounds a single generation call. Long generations are
// expected, indefinite hangs are not.
const DefaultTimeout = 10 * time.Minute

// Options configures a Vertex AI client. Credentials are resolved from the
// environment (Application Default Credentials).
type Options struct {
	Project  string
	Location string
	Model    string
	Timeout  time.Duration
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client handles communication with Gemini models on Vertex AI.
type Client struct {
	generate generateFunc
	model    string
	timeout  time.Duration
}

// Generator issues one prompt and returns the audited view of the response.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*audit.Response, error)
	Model() string
}

// Ensure Client implements Generator
var _ Generator = (*Client)(nil)

// NewClient creates a new Vertex AI client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Project) == "" {
		return nil, apperrors.Config("Vertex AI project is not set (VERTEX_PROJECT_ID).", nil)
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, apperrors.Config("Vertex AI model is not set (VERTEX_MODEL_ID).", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  opts.Project,
		Location: opts.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.KindAuth, "Failed to initialize Vertex AI client. Check Application Default Credentials.", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		generate: client.Models.GenerateContent,
		model:    opts.Model,
		timeout:  timeout,
	}, nil
}

// Model returns the model ID requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt as a single user turn.
func (c *Client) Generate(ctx context.Context, prompt string) (*audit.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	logger.Debug("Sending GenerateContent request", "model", c.model)
	resp, err := c.generate(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, classifyVertexError(err)
	}
	if resp == nil {
		return nil, apperrors.Validation(fmt.Errorf("no response received from Vertex AI"))
	}
	logger.Debug("GenerateContent finished", "candidates", len(resp.Candidates), "model_version", resp.ModelVersion)

	return FromGenAI(resp), nil
}
