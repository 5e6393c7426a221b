//go:build !windows

package files

import (
	"errors"
	"os"
)

// renameNoReplace moves oldPath to newPath and fails with os.ErrExist when
// newPath is already taken. Filesystems without hard links fall back to a
// plain rename.
func renameNoReplace(oldPath, newPath string) error {
	err := os.Link(oldPath, newPath)
	switch {
	case err == nil:
		return os.Remove(oldPath)
	case errors.Is(err, os.ErrExist):
		return err
	default:
		return os.Rename(oldPath, newPath)
	}
}
