package settings

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"slices"
	"sync"

	"lingomic/internal/domain"
	"lingomic/internal/fsutil"
)

// FileStore persists domain.Settings as JSON.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns stored settings merged over the defaults. Unknown or invalid
// values fall back to their default.
func (s *FileStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := domain.DefaultSettings()
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return defaults, domain.FileIOError("Failed to load settings", err)
	}

	stored := defaults
	if err := json.Unmarshal(contents, &stored); err != nil {
		return defaults, domain.FileIOError("Failed to load settings", err)
	}
	return Sanitize(stored), nil
}

func (s *FileStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(Sanitize(settings), "", "  ")
	if err != nil {
		return domain.FileIOError("Failed to save settings", err)
	}
	if err := fsutil.SaveFileAtomic(s.path, data, 0o600); err != nil {
		return domain.FileIOError("Failed to save settings", err)
	}
	return nil
}

// Sanitize clamps temperature and replaces unknown enum values.
func Sanitize(in domain.Settings) domain.Settings {
	defaults := domain.DefaultSettings()
	out := in
	if out.SelectedLanguage == "" {
		out.SelectedLanguage = defaults.SelectedLanguage
	}
	if out.InterpreterA == "" {
		out.InterpreterA = defaults.InterpreterA
	}
	if out.InterpreterB == "" {
		out.InterpreterB = defaults.InterpreterB
	}
	out.Temperature = ClampTemperature(out.Temperature)
	if !out.TTSEngine.Valid() {
		out.TTSEngine = defaults.TTSEngine
	}
	if !slices.Contains(domain.Voices, out.Voice) {
		out.Voice = defaults.Voice
	}
	return out
}

func ClampTemperature(value float64) float64 {
	switch {
	case math.IsNaN(value):
		return domain.DefaultTemperature
	case value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}

// MemoryStore keeps settings in memory.
type MemoryStore struct {
	mu       sync.Mutex
	settings domain.Settings
	saves    int
}

func NewMemoryStore(initial domain.Settings) *MemoryStore {
	return &MemoryStore{settings: Sanitize(initial)}
}

func (s *MemoryStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *MemoryStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = Sanitize(settings)
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
