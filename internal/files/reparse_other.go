//go:build !windows

package files

// Only Windows has reparse points; Lstat already reports symlinks elsewhere.
func isReparsePoint(string) (bool, error) {
	return false, nil
}
