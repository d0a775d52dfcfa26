package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the document as one JSON file. Writes go through a
// temp file and an atomic rename so a crash mid-write leaves the previous
// document intact. An absent or corrupt file reads as an empty document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed store at path, creating parent
// directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Read(ctx context.Context) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

func (s *FileStore) Merge(ctx context.Context, patch Patch) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	patch.apply(&doc)

	if err := s.save(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *FileStore) Ping(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("state directory not accessible: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// load reads the document, treating a missing or unreadable file as empty.
// Corruption is recoverable by design: the next Merge rewrites the file.
func (s *FileStore) load() Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Document{}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}
	}
	return doc
}

func (s *FileStore) save(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
