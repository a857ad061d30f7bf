package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"
)

// MoveFile moves a file into destDir, appending a counter to the name if it
// collides (file_1.jpg, file_2.jpg, ...).
func MoveFile(src, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	name := uniqueName(filepath.Base(src), func(candidate string) bool {
		_, err := os.Stat(filepath.Join(destDir, candidate))
		return os.IsNotExist(err)
	})
	return rename(src, filepath.Join(destDir, name))
}

// MoveToTrash moves a file into the user trash: the freedesktop.org trash on
// Linux (with a .trashinfo entry), ~/.Trash on macOS, the Recycle Bin on
// Windows, a fallback folder elsewhere.
func MoveToTrash(src string) error {
	if runtime.GOOS == "windows" {
		return moveToWindowsTrash(src)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	switch runtime.GOOS {
	case "linux":
		return moveToLinuxTrash(src, home)
	case "darwin":
		return MoveFile(src, filepath.Join(home, ".Trash"))
	default:
		return MoveFile(src, filepath.Join(home, "imagedups_trash"))
	}
}

func moveToLinuxTrash(src, home string) error {
	filesDir := filepath.Join(home, ".local", "share", "Trash", "files")
	infoDir := filepath.Join(home, ".local", "share", "Trash", "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	absPath, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	name := uniqueName(filepath.Base(src), func(candidate string) bool {
		_, err1 := os.Stat(filepath.Join(filesDir, candidate))
		_, err2 := os.Stat(filepath.Join(infoDir, candidate+".trashinfo"))
		return os.IsNotExist(err1) && os.IsNotExist(err2)
	})

	infoPath := filepath.Join(infoDir, name+".trashinfo")
	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		absPath, time.Now().Format("2006-01-02T15:04:05"))
	if err := os.WriteFile(infoPath, []byte(info), 0644); err != nil {
		return err
	}

	if err := rename(src, filepath.Join(filesDir, name)); err != nil {
		os.Remove(infoPath)
		return err
	}
	return nil
}

// uniqueName returns filename, or filename with a numeric suffix, such that
// available reports true.
func uniqueName(filename string, available func(string) bool) string {
	if available(filename) {
		return filename
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", base, counter, ext)
		if available(candidate) {
			return candidate
		}
	}
}

// rename moves a file, falling back to copy+delete across filesystems.
func rename(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := copyFile(src, dest); err != nil {
			return err
		}
		return os.Remove(src)
	}
	return err
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}
