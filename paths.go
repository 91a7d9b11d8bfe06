package xmanager

import (
	"fmt"
	"os"
	"path/filepath"
)

// StaticPath joins the run directory with the given parts without touching
// the filesystem.
func (m *Manager) StaticPath(parts ...string) string {
	return filepath.Join(append([]string{m.rootPath}, parts...)...)
}

// Path joins the run directory with the given parts and ensures the target
// location exists: a final component without an extension is treated as a
// directory and created along with its parents; one with an extension is
// treated as a file and only its parent directory is created. The absolute
// path is returned either way, and repeated calls with the same arguments
// return the same path without error.
//
// Known limitation of the extension convention: a file deliberately named
// without an extension is misclassified as a directory. Use StaticPath for
// such targets.
func (m *Manager) Path(parts ...string) (string, error) {
	path := m.StaticPath(parts...)

	dir := path
	if !isDirPath(path) {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return path, nil
}

// DirPath joins the run directory with the given parts and ensures the joined
// path itself exists as a directory, regardless of extension.
func (m *Manager) DirPath(parts ...string) (string, error) {
	path := m.StaticPath(parts...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return path, nil
}

// isDirPath applies the extension convention: no extension on the final
// component means the path names a directory.
func isDirPath(path string) bool {
	return filepath.Ext(path) == ""
}
