package vertex

import (
	"context"
	"errors"
	"fmt"

	"github.com/oukeidos/promptaudit/internal/apperrors"
	"google.golang.org/genai"
)

func classifyVertexError(err error) error {
	if err == nil {
		return nil
	}

	wrapped := fmt.Errorf("vertex ai generate content failed: %w", err)

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 400:
			return apperrors.New(apperrors.KindBadRequest, "Vertex AI request rejected (400).", wrapped)
		case 404:
			return apperrors.New(apperrors.KindNotFound, "Vertex AI model not found or not available in this region (404).", wrapped)
		case 401, 403:
			return apperrors.New(apperrors.KindAuth, fmt.Sprintf("Vertex AI authentication/authorization failed (%d).", apiErr.Code), wrapped)
		case 429:
			return apperrors.New(apperrors.KindRateLimit, "Vertex AI quota or rate limit exceeded (429).", wrapped)
		default:
			if apiErr.Code >= 500 {
				return apperrors.New(apperrors.KindTransient, fmt.Sprintf("Vertex AI service error (%d).", apiErr.Code), wrapped)
			}
			return apperrors.New(apperrors.KindBadRequest, fmt.Sprintf("Vertex AI API error (%d).", apiErr.Code), wrapped)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.New(apperrors.KindTransient, "Vertex AI request timed out.", wrapped)
	}

	// DNS, socket and credential-refresh failures land here.
	return apperrors.Transient(wrapped)
}
