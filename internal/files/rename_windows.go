//go:build windows

package files

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// renameNoReplace moves oldPath to newPath. Without MOVEFILE_REPLACE_EXISTING
// the call fails when newPath exists, which surfaces as os.ErrExist.
func renameNoReplace(oldPath, newPath string) error {
	oldPtr, err := windows.UTF16PtrFromString(oldPath)
	if err != nil {
		return fmt.Errorf("invalid source path: %w", err)
	}
	newPtr, err := windows.UTF16PtrFromString(newPath)
	if err != nil {
		return fmt.Errorf("invalid destination path: %w", err)
	}
	return windows.MoveFileEx(oldPtr, newPtr, windows.MOVEFILE_WRITE_THROUGH)
}
