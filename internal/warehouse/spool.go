package warehouse

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oukeidos/promptaudit/internal/apperrors"
	"github.com/oukeidos/promptaudit/internal/audit"
	"github.com/oukeidos/promptaudit/internal/files"
)

const spoolExt = ".json"

func writeSpool(dir, insertID string, row *audit.Row) (string, error) {
	if err := files.RejectSymlinkPath(dir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create spool dir: %w", err)
	}
	data, err := json.MarshalIndent(row, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode row: %w", err)
	}
	return files.AtomicWriteExclusive(filepath.Join(dir, insertID+spoolExt), data, 0600)
}

// ReadSpool loads a spooled row. The insert ID is the file name without
// its extension (and without any _N suffix added on collision).
func ReadSpool(path string) (*audit.Row, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read spool file %s: %w", path, err)
	}
	var row audit.Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, "", apperrors.Validation(fmt.Errorf("spool file %s: %w", path, err))
	}
	if row.Candidates == nil {
		row.Candidates = []audit.CandidateRecord{}
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.LastIndex(id, "_"); i > 0 {
		if _, err := strconv.Atoi(id[i+1:]); err == nil {
			id = id[:i]
		}
	}
	return &row, id, nil
}
