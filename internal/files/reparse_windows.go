//go:build windows

package files

import "golang.org/x/sys/windows"

// isReparsePoint reports junctions and other reparse points, which Lstat
// does not flag as symlinks on Windows.
func isReparsePoint(path string) (bool, error) {
	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false, err
	}
	attrs, err := windows.GetFileAttributes(ptr)
	if err != nil {
		return false, err
	}
	return attrs&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0, nil
}
