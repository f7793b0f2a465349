package store

import (
	"context"
	"sync"

	"github.com/askwhyharsh/geohunt/internal/role"
)

type Memory struct {
	mu      sync.RWMutex
	records map[role.Role]Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[role.Role]Record)}
}

func (m *Memory) Put(_ context.Context, r role.Role, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.Difficulty != nil {
		d := *rec.Difficulty
		rec.Difficulty = &d
	}
	m.records[r] = rec
	return nil
}

func (m *Memory) Get(_ context.Context, r role.Role) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[r]
	if !ok {
		return nil, nil
	}
	if rec.Difficulty != nil {
		d := *rec.Difficulty
		rec.Difficulty = &d
	}
	return &rec, nil
}
