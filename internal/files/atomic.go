package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/oukeidos/promptaudit/internal/logger"
)

const maxExclusiveAttempts = 10

// AtomicWriteExclusive writes data next to path and renames it into place
// without replacing an existing file. When path is taken, name_1.ext ..
// name_9.ext are tried in turn. It returns the path actually written.
func AtomicWriteExclusive(path string, data []byte, perms os.FileMode) (string, error) {
	if err := RejectSymlinkPath(path); err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)

	var lastErr error
	for i := 0; i < maxExclusiveAttempts; i++ {
		candidate := path
		if i > 0 {
			candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		}
		if _, err := os.Lstat(candidate); err == nil {
			lastErr = fmt.Errorf("%s: %w", candidate, os.ErrExist)
			continue
		}

		err := writeTemp(candidate, data, perms)
		if errors.Is(err, os.ErrExist) {
			lastErr = err
			continue
		}
		if err != nil {
			return "", err
		}
		if err := syncDir(dir); err != nil {
			logger.Warn("Directory fsync failed (safe to ignore on some platforms)", "path", dir, "error", err)
		}
		return candidate, nil
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("failed to write %s", path)
}

func writeTemp(dest string, data []byte, perms os.FileMode) error {
	tmpPath := dest + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perms)
	if err != nil {
		return err
	}

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		return fail(fmt.Errorf("failed to write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("failed to sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := renameNoReplace(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move temp file into place: %w", err)
	}
	return nil
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		logger.Debug("Directory fsync not supported on Windows; skipping", "path", dir)
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
