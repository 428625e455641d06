package corrections

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"lingomic/internal/domain"
	"lingomic/internal/fsutil"
)

// FileStore keeps the correction table as a flat JSON object on disk and
// rewrites the whole document on every change.
type FileStore struct {
	path string

	mu    sync.Mutex
	table map[string]string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, table: map[string]string{}}
}

// Load reads the document. A missing file yields an empty table.
func (s *FileStore) Load() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := os.ReadFile(s.path)
	if err != nil {
		s.table = map[string]string{}
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return map[string]string{}, domain.FileIOError("Failed to load corrections", err)
	}

	table := map[string]string{}
	if len(contents) > 0 {
		if err := json.Unmarshal(contents, &table); err != nil {
			s.table = map[string]string{}
			return map[string]string{}, domain.FileIOError("Failed to load corrections", err)
		}
	}
	s.table = table
	return maps.Clone(table), nil
}

// Save replaces the stored table.
func (s *FileStore) Save(table map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = maps.Clone(table)
	if s.table == nil {
		s.table = map[string]string{}
	}
	return s.writeLocked()
}

// Add inserts or updates a pair. An empty key is ignored.
func (s *FileStore) Add(incorrect string, correct string) error {
	if incorrect == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[incorrect] = correct
	return s.writeLocked()
}

func (s *FileStore) Remove(incorrect string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.table, incorrect)
	return s.writeLocked()
}

func (s *FileStore) writeLocked() error {
	data, err := json.MarshalIndent(s.table, "", "  ")
	if err != nil {
		return domain.FileIOError("Failed to save corrections", err)
	}
	if err := fsutil.SaveFileAtomic(s.path, data, 0o600); err != nil {
		return domain.FileIOError("Failed to save corrections", fmt.Errorf("%s: %w", s.path, err))
	}
	return nil
}

// MemoryStore is a non-persistent CorrectionStore.
type MemoryStore struct {
	mu    sync.Mutex
	table map[string]string
}

func NewMemoryStore(initial map[string]string) *MemoryStore {
	table := maps.Clone(initial)
	if table == nil {
		table = map[string]string{}
	}
	return &MemoryStore{table: table}
}

func (s *MemoryStore) Load() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.table), nil
}

func (s *MemoryStore) Save(table map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = maps.Clone(table)
	if s.table == nil {
		s.table = map[string]string{}
	}
	return nil
}

func (s *MemoryStore) Add(incorrect string, correct string) error {
	if incorrect == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[incorrect] = correct
	return nil
}

func (s *MemoryStore) Remove(incorrect string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.table, incorrect)
	return nil
}
