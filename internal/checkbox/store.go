package checkbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// EntryKind describes what a path resolves to.
type EntryKind int

const (
	EntryMissing EntryKind = iota
	EntryFile
	EntryDir
)

// Store is the document-storage collaborator: full-text read and write keyed
// by path.
type Store interface {
	Lookup(ctx context.Context, path string) (EntryKind, error)
	Read(ctx context.Context, path string) (string, error)
	Write(ctx context.Context, path, text string) error
}

// FileStore serves slash-separated document paths relative to Root.
type FileStore struct {
	Root string
}

// NewFileStore returns a FileStore rooted at root.
func NewFileStore(root string) *FileStore {
	return &FileStore{Root: root}
}

// ErrOutsideRoot is returned for paths that escape the store root.
var ErrOutsideRoot = errors.New("path escapes store root")

func (s *FileStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return filepath.Join(s.Root, clean), nil
}

// Lookup stats path. Paths outside the root are reported missing.
func (s *FileStore) Lookup(ctx context.Context, path string) (EntryKind, error) {
	if err := ctx.Err(); err != nil {
		return EntryMissing, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return EntryMissing, nil
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return EntryMissing, nil
	}
	if err != nil {
		return EntryMissing, err
	}
	if info.IsDir() {
		return EntryDir, nil
	}
	return EntryFile, nil
}

// Read returns the full text of path.
func (s *FileStore) Read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write replaces the content of path atomically.
func (s *FileStore) Write(ctx context.Context, path, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	return atomic.WriteFile(full, strings.NewReader(text))
}

// MemStore is an in-memory Store. Directories are declared with AddDir.
type MemStore struct {
	mu     sync.Mutex
	files  map[string]string
	dirs   map[string]bool
	writes int
}

// NewMemStore returns a MemStore holding files.
func NewMemStore(files map[string]string) *MemStore {
	m := &MemStore{files: map[string]string{}, dirs: map[string]bool{}}
	for k, v := range files {
		m.files[k] = v
	}
	return m
}

// AddDir declares path as a directory.
func (m *MemStore) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
}

// Lookup implements Store.
func (m *MemStore) Lookup(ctx context.Context, path string) (EntryKind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dirs[path] {
		return EntryDir, nil
	}
	if _, ok := m.files[path]; ok {
		return EntryFile, nil
	}
	return EntryMissing, nil
}

// Read implements Store.
func (m *MemStore) Read(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.files[path]
	if !ok {
		return "", fs.ErrNotExist
	}
	return text, nil
}

// Write implements Store.
func (m *MemStore) Write(ctx context.Context, path, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = text
	m.writes++
	return nil
}

// File returns the current text of path.
func (m *MemStore) File(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[path]
}

// Writes returns the number of Write calls so far.
func (m *MemStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
