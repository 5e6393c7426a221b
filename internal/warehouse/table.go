package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/oukeidos/promptaudit/internal/apperrors"
	"google.golang.org/api/googleapi"
)

// tableAPI is the slice of *bigquery.Table the sink uses.
type tableAPI interface {
	Metadata(ctx context.Context) (*bigquery.TableMetadata, error)
	Create(ctx context.Context, md *bigquery.TableMetadata) error
	Put(ctx context.Context, src any) error
}

type bqTable struct {
	t *bigquery.Table
}

func (b bqTable) Metadata(ctx context.Context) (*bigquery.TableMetadata, error) {
	return b.t.Metadata(ctx)
}

func (b bqTable) Create(ctx context.Context, md *bigquery.TableMetadata) error {
	return b.t.Create(ctx, md)
}

func (b bqTable) Put(ctx context.Context, src any) error {
	return b.t.Inserter().Put(ctx, src)
}

func apiErrorCode(err error) (int, *googleapi.Error) {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code, gErr
	}
	return 0, nil
}

func isNotFound(err error) bool {
	code, _ := apiErrorCode(err)
	return code == http.StatusNotFound
}

func isConflict(err error) bool {
	code, _ := apiErrorCode(err)
	return code == http.StatusConflict
}

// BigQuery reports quota exhaustion as 403 with a reason code.
func isQuotaReason(gErr *googleapi.Error) bool {
	for _, item := range gErr.Errors {
		switch item.Reason {
		case "quotaExceeded", "rateLimitExceeded":
			return true
		}
	}
	return false
}

func classifyAPIError(action string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("bigquery %s failed: %w", action, err)

	code, gErr := apiErrorCode(err)
	switch {
	case gErr == nil:
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.New(apperrors.KindTransient, fmt.Sprintf("BigQuery %s timed out.", action), wrapped)
		}
		return apperrors.Transient(wrapped)
	case code == http.StatusNotFound:
		return apperrors.New(apperrors.KindNotFound, fmt.Sprintf("BigQuery %s: dataset or table not found (404).", action), wrapped)
	case code == http.StatusForbidden && isQuotaReason(gErr):
		return apperrors.New(apperrors.KindRateLimit, fmt.Sprintf("BigQuery %s: quota exceeded.", action), wrapped)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return apperrors.New(apperrors.KindAuth, fmt.Sprintf("BigQuery %s: permission denied (%d). Check IAM roles on the dataset.", action, code), wrapped)
	case code == http.StatusTooManyRequests:
		return apperrors.New(apperrors.KindRateLimit, fmt.Sprintf("BigQuery %s: rate limit exceeded (429).", action), wrapped)
	case code >= 500:
		return apperrors.New(apperrors.KindTransient, fmt.Sprintf("BigQuery %s: service error (%d).", action, code), wrapped)
	default:
		return apperrors.New(apperrors.KindBadRequest, fmt.Sprintf("BigQuery %s rejected (%d).", action, code), wrapped)
	}
}
