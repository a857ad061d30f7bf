//go:build !windows

package fileutil

import "errors"

// moveToWindowsTrash is only reachable when runtime.GOOS is "windows"; this
// stub keeps non-Windows builds compiling.
func moveToWindowsTrash(path string) error {
	return errors.New("recycle bin is only available on windows")
}
