package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// mediaExtensions are the file types the duplicate scan recognizes.
var mediaExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".mp4":  true,
}

// Manager handles media file storage and duplicate detection.
type Manager struct {
	outputDir string
	saved     map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a storage manager rooted at outputDir, creating the
// directory when needed and indexing any media already present.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		saved:     make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles indexes media files already in the output directory.
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && mediaExtensions[filepath.Ext(entry.Name())] {
			m.saved[entry.Name()] = true
		}
	}

	return nil
}

// IsSaved reports whether a media file with the given name already exists.
func (m *Manager) IsSaved(name string) bool {
	m.mu.RLock()
	cached := m.saved[name]
	m.mu.RUnlock()
	if cached {
		return true
	}

	// The file may have appeared outside this process.
	if _, err := os.Stat(filepath.Join(m.outputDir, name)); err == nil {
		m.mu.Lock()
		m.saved[name] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// SaveMedia writes media data under the given filename. The write goes to a
// temp file first and is renamed into place so readers never see a partial
// file.
func (m *Manager) SaveMedia(r io.Reader, name string) error {
	filename := filepath.Join(m.outputDir, name)

	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to save media data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.saved[name] = true
	m.mu.Unlock()

	return nil
}

// GetOutputDir returns the output directory path.
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetSavedCount returns the number of media files known to the manager.
func (m *Manager) GetSavedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.saved)
}
