package gallery

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"reelgrab/pkg/errors"
	"reelgrab/pkg/logger"
)

// Manager moves finished downloads into the media gallery directory. It
// stands in for the device media library: EnsureWritable is the
// permission request, Save is the gallery write, Discard is the
// temporary-file cleanup.
type Manager struct {
	dir     string
	tempDir string
	log     logger.Logger
}

// NewManager creates a gallery manager. tempDir may be empty, in which
// case the OS temp directory is used for in-flight files.
func NewManager(dir, tempDir string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{dir: dir, tempDir: tempDir, log: log}
}

// Dir returns the gallery directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// EnsureWritable verifies the gallery can be written to, creating the
// directory when missing. A refusal is a permission error; callers must
// not attempt any transfer after one.
func (m *Manager) EnsureWritable() error {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return errors.New(errors.ErrorTypePermission, fmt.Sprintf("gallery not writable: %v", err))
	}

	probe, err := os.CreateTemp(m.dir, ".permission-*")
	if err != nil {
		return errors.New(errors.ErrorTypePermission, fmt.Sprintf("gallery not writable: %v", err))
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}

// TempFile creates a file for an in-flight download.
func (m *Manager) TempFile(pattern string) (*os.File, error) {
	dir := m.tempDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
	}
	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	return file, nil
}

// Save moves a downloaded temporary file into the gallery under the given
// name, never overwriting an existing entry. It returns the final path.
func (m *Manager) Save(tmpPath, filename string) (string, error) {
	target := filepath.Join(m.dir, m.availableName(sanitizeName(filename)))

	if err := moveFile(tmpPath, target); err != nil {
		return "", fmt.Errorf("failed to save to gallery: %w", err)
	}

	m.log.InfoWithFields("saved to gallery", map[string]interface{}{
		"path": target,
	})
	return target, nil
}

// Discard removes a temporary file. Failures are swallowed; cleanup never
// escalates after a successful save.
func (m *Manager) Discard(tmpPath string) {
	if tmpPath == "" {
		return
	}
	if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
		m.log.WithError(err).WithField("path", tmpPath).Debug("failed to remove temporary file")
	}
}

// availableName returns name, or a "name (2).ext" variant when taken.
func (m *Manager) availableName(name string) string {
	if _, err := os.Stat(filepath.Join(m.dir, name)); os.IsNotExist(err) {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(filepath.Join(m.dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
}

// sanitizeName strips path separators and control characters from a
// server-supplied filename.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|' {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "reel.mp4"
	}
	return name
}

// moveFile renames src to dst, falling back to copy+remove when they live
// on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	os.Remove(src)
	return nil
}
