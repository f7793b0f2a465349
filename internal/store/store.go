package store

import (
	"context"

	"github.com/askwhyharsh/geohunt/internal/location"
	"github.com/askwhyharsh/geohunt/internal/role"
)

// Record is the last coordinate a role reported. Difficulty is only ever
// written by predator clients.
type Record struct {
	Latitude   float64          `json:"latitude"`
	Longitude  float64          `json:"longitude"`
	Difficulty *role.Difficulty `json:"difficulty,omitempty"`
}

func NewRecord(c location.Coordinate, difficulty *role.Difficulty) Record {
	return Record{Latitude: c.Latitude, Longitude: c.Longitude, Difficulty: difficulty}
}

func (r Record) Coordinate() location.Coordinate {
	return location.Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Store keeps one Record per role, last write wins.
type Store interface {
	Put(ctx context.Context, r role.Role, rec Record) error
	// Get returns nil, nil when the role has never been written.
	Get(ctx context.Context, r role.Role) (*Record, error)
}
