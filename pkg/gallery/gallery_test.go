package gallery

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"reelgrab/pkg/errors"
	"reelgrab/pkg/logger"
)

func TestEnsureWritable(t *testing.T) {
	t.Run("CreatesDirectory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "gallery")
		m := NewManager(dir, "", logger.NewTestLogger())
		if err := m.EnsureWritable(); err != nil {
			t.Fatalf("expected writable gallery, got %v", err)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("expected gallery directory to exist: %v", err)
		}
	})

	t.Run("DeniedIsPermissionError", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission checks are bypassed for root")
		}
		parent := t.TempDir()
		if err := os.Chmod(parent, 0500); err != nil {
			t.Fatalf("Failed to chmod: %v", err)
		}
		defer os.Chmod(parent, 0700)

		m := NewManager(filepath.Join(parent, "gallery"), "", logger.NewTestLogger())
		err := m.EnsureWritable()
		if err == nil {
			t.Fatal("expected permission error")
		}
		var e *errors.Error
		if !stderrors.As(err, &e) || e.Type != errors.ErrorTypePermission {
			t.Errorf("expected permission error type, got %v", err)
		}
	})
}

func TestSaveMovesIntoGallery(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, "", logger.NewTestLogger())

	tmp := filepath.Join(t.TempDir(), "incoming.mp4")
	if err := os.WriteFile(tmp, []byte("video"), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	saved, err := m.Save(tmp, "clip.mp4")
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if filepath.Base(saved) != "clip.mp4" {
		t.Errorf("unexpected saved name: %s", saved)
	}
	data, err := os.ReadFile(saved)
	if err != nil || string(data) != "video" {
		t.Errorf("saved content mismatch: %s %v", data, err)
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Error("expected source temp file to be gone after save")
	}
}

func TestSaveAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, "", logger.NewTestLogger())

	for i := 0; i < 2; i++ {
		tmp := filepath.Join(t.TempDir(), "incoming.mp4")
		if err := os.WriteFile(tmp, []byte("video"), 0644); err != nil {
			t.Fatalf("Failed to write temp file: %v", err)
		}
		if _, err := m.Save(tmp, "clip.mp4"); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "clip.mp4")); err != nil {
		t.Error("expected first file to exist")
	}
	if _, err := os.Stat(filepath.Join(dir, "clip (2).mp4")); err != nil {
		t.Error("expected second file to get a numbered name")
	}
}

func TestDiscardSwallowsErrors(t *testing.T) {
	m := NewManager(t.TempDir(), "", logger.NewTestLogger())
	m.Discard("")                         // no-op
	m.Discard("/nonexistent/path/x.mp4")  // must not panic

	tmp := filepath.Join(t.TempDir(), "x.mp4")
	if err := os.WriteFile(tmp, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	m.Discard(tmp)
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Error("expected temp file to be removed")
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"clip.mp4":             "clip.mp4",
		"../../etc/passwd":     "passwd",
		"a:b*c?.mp4":           "abc.mp4",
		"dir\\escape.mp4":      "escape.mp4",
		"":                     "reel.mp4",
		"..":                   "reel.mp4",
	}
	for in, want := range cases {
		if got := sanitizeName(in); got != want {
			t.Errorf("sanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
