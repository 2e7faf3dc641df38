package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFileResolver implements FileResolver for the local filesystem.
// Relative paths are taken relative to BaseDir (the working directory if
// empty).
type DefaultFileResolver struct {
	BaseDir string
}

// NewDefaultFileResolver creates a standard filesystem resolver.
func NewDefaultFileResolver() *DefaultFileResolver {
	return &DefaultFileResolver{}
}

func (r *DefaultFileResolver) Resolve(path string) (io.ReadCloser, string, error) {
	resolvedPath := path
	if !filepath.IsAbs(path) && r.BaseDir != "" {
		resolvedPath = filepath.Join(r.BaseDir, path)
	}

	canonicalPath, err := filepath.Abs(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("could not get absolute path for '%s': %w", resolvedPath, err)
	}

	file, err := os.Open(canonicalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("file not found: %s (resolved from '%s')", canonicalPath, path)
		}
		return nil, "", fmt.Errorf("could not open file '%s': %w", canonicalPath, err)
	}
	return file, canonicalPath, nil
}

// MemoryResolver serves sources held in memory.  Used by tests and by the
// CLI when reading a program from stdin.
type MemoryResolver struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryResolver(files map[string]string) *MemoryResolver {
	m := &MemoryResolver{files: make(map[string][]byte, len(files))}
	for path, content := range files {
		m.files[path] = []byte(content)
	}
	return m
}

func (m *MemoryResolver) Add(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

func (m *MemoryResolver) Resolve(path string) (io.ReadCloser, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	if !ok {
		return nil, "", fmt.Errorf("file not found: %s", path)
	}
	return io.NopCloser(bytes.NewReader(content)), path, nil
}
