package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager provides file write operations relative to a base path
type Manager struct {
	basePath string
}

// NewManager creates a new file manager instance
func NewManager(basePath string) *Manager {
	return &Manager{basePath: basePath}
}

// EnsureDirectory creates a directory and its parents if missing
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.resolvePath(path)

	slog.Debug("Ensuring directory exists",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
	}
	return nil
}

// Create opens path for writing, creating parent directories first.
func (m *Manager) Create(path string) (*os.File, error) {
	fullPath := m.resolvePath(path)
	if err := m.EnsureDirectory(filepath.Dir(fullPath)); err != nil {
		return nil, err
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	return f, nil
}

// WriteFile writes data to a file, creating parent directories first.
func (m *Manager) WriteFile(path string, data []byte) error {
	fullPath := m.resolvePath(path)

	slog.Info("Writing file",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Int("size_bytes", len(data)))

	f, err := m.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}
	return f.Close()
}

// resolvePath resolves a path relative to the base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.basePath == "" {
		return path
	}
	return filepath.Join(m.basePath, path)
}
