package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/askwhyharsh/geohunt/internal/format"
	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/joho/godotenv"
)

const (
	KeyRole             = "GEOHUNT_ROLE"
	KeyDifficulty       = "GEOHUNT_DIFFICULTY"
	KeyCoordinateSystem = "GEOHUNT_COORDINATE_SYSTEM"
)

// Preferences is the small set of user choices that survive restarts.
type Preferences struct {
	Role       *role.Role
	Difficulty role.Difficulty
	System     format.System
}

// Defaults returns the preferences of a first launch.
func Defaults() Preferences {
	return Preferences{
		Difficulty: role.DefaultDifficulty,
		System:     format.SystemDecimal,
	}
}

type Loader interface {
	Load() (Preferences, error)
}

type Saver interface {
	Save(p Preferences) error
}

type Store interface {
	Loader
	Saver
}

// FileStore keeps preferences in a KEY=value file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns defaults when the file does not exist yet. Unknown values
// fall back to their default individually.
func (s *FileStore) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Defaults()
	values, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("read preferences %s: %w", s.path, err)
	}

	if v, ok := values[KeyRole]; ok && v != "" {
		if r, err := role.Parse(v); err == nil {
			p.Role = &r
		}
	}
	if v, ok := values[KeyDifficulty]; ok {
		if d, err := role.ParseDifficulty(v); err == nil {
			p.Difficulty = d
		}
	}
	if v, ok := values[KeyCoordinateSystem]; ok {
		if sys, err := format.ParseSystem(v); err == nil {
			p.System = sys
		}
	}
	return p, nil
}

func (s *FileStore) Save(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := map[string]string{
		KeyDifficulty:       p.Difficulty.String(),
		KeyCoordinateSystem: p.System.String(),
	}
	if p.Role != nil {
		values[KeyRole] = p.Role.String()
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preferences dir: %w", err)
		}
	}
	if err := godotenv.Write(values, s.path); err != nil {
		return fmt.Errorf("write preferences %s: %w", s.path, err)
	}
	return nil
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.Mutex
	prefs Preferences
	saves int
}

func NewMemory(initial Preferences) *Memory {
	return &Memory{prefs: initial}
}

func (m *Memory) Load() (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

func (m *Memory) Save(p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = p
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
