package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMoveFile(t *testing.T) {
	srcDir := t.TempDir()
	destDir := filepath.Join(t.TempDir(), "dest")

	src := filepath.Join(srcDir, "photo.jpg")
	if err := os.WriteFile(src, []byte("image data"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := MoveFile(src, destDir); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source file still exists after move")
	}
	data, err := os.ReadFile(filepath.Join(destDir, "photo.jpg"))
	if err != nil {
		t.Fatalf("read moved file: %v", err)
	}
	if string(data) != "image data" {
		t.Errorf("moved file content = %q", data)
	}
}

func TestMoveFileCollision(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()

	// Occupy the destination name and its first suffixed variant.
	for _, name := range []string{"photo.jpg", "photo_1.jpg"} {
		if err := os.WriteFile(filepath.Join(destDir, name), []byte("existing"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	src := filepath.Join(srcDir, "photo.jpg")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := MoveFile(src, destDir); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "photo_2.jpg"))
	if err != nil {
		t.Fatalf("expected photo_2.jpg: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("photo_2.jpg content = %q", data)
	}
	for _, name := range []string{"photo.jpg", "photo_1.jpg"} {
		data, err := os.ReadFile(filepath.Join(destDir, name))
		if err != nil || string(data) != "existing" {
			t.Errorf("%s was clobbered", name)
		}
	}
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{
		"a.jpg":   true,
		"a_1.jpg": true,
	}
	available := func(name string) bool { return !taken[name] }

	if got := uniqueName("b.jpg", available); got != "b.jpg" {
		t.Errorf("free name changed to %s", got)
	}
	if got := uniqueName("a.jpg", available); got != "a_2.jpg" {
		t.Errorf("collision resolved to %s, want a_2.jpg", got)
	}
}
