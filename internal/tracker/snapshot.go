package tracker

import (
	"github.com/askwhyharsh/geohunt/internal/format"
	"github.com/askwhyharsh/geohunt/internal/highlight"
	"github.com/askwhyharsh/geohunt/internal/location"
	"github.com/askwhyharsh/geohunt/internal/role"
)

// Derived is what the player may learn about the opponent at the current
// difficulty. Known is false until both fixes have been seen.
type Derived struct {
	Known          bool
	Hidden         bool
	DistanceMeters *float64
	Bearing        *location.Arrow
	Proximity      location.Proximity
	// OpponentArea is a geohash cell containing the opponent, coarser at
	// harder difficulties.
	OpponentArea       string
	OpponentAreaCenter *location.Coordinate
}

// Snapshot is a consistent copy of an engine's state.
type Snapshot struct {
	Role               role.Role
	Opponent           role.Role
	Difficulty         role.Difficulty
	System             format.System
	ReadOnly           bool
	Self               *location.Coordinate
	OpponentCoordinate *location.Coordinate
	FormattedSelf      *format.Formatted
	FormattedOpponent  *format.Formatted
	Highlights         map[highlight.Field][]int
	Derived            Derived
	// PositionError is the last position failure, cleared by the next fix.
	PositionError error
}

// ComputeDerived applies the difficulty policy to the current fixes.
func (e *Engine) ComputeDerived() Derived {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.derivedLocked()
}

func (e *Engine) derivedLocked() Derived {
	if e.lastSelf == nil || e.lastOpponent == nil {
		return Derived{}
	}

	d := e.difficulty.Current()
	if !d.ShowsDistance() {
		return Derived{Known: true, Hidden: true}
	}

	self, opp := *e.lastSelf, *e.lastOpponent
	distance := location.DistanceMeters(self, opp)
	out := Derived{
		Known:          true,
		DistanceMeters: &distance,
		Proximity:      location.ProximityOf(distance),
	}
	if d.ShowsBearing() {
		arrow := location.BearingArrow(self, opp)
		out.Bearing = &arrow
	}
	if p := d.AreaPrecision(); p > 0 {
		out.OpponentArea = location.Area(opp, p)
		center := location.AreaCenter(out.OpponentArea)
		out.OpponentAreaCenter = &center
	}
	return out
}

// Snapshot copies every field under one read lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Snapshot{
		Role:          e.self,
		Opponent:      e.opponent,
		Difficulty:    e.difficulty.Current(),
		System:        e.system,
		ReadOnly:      e.opts.ReadOnly,
		Highlights:    e.highlights.Live(),
		Derived:       e.derivedLocked(),
		PositionError: e.positionErr,
	}
	if e.lastSelf != nil {
		c := *e.lastSelf
		s.Self = &c
	}
	if e.lastOpponent != nil {
		c := *e.lastOpponent
		s.OpponentCoordinate = &c
	}
	if e.formattedSelf != nil {
		f := *e.formattedSelf
		s.FormattedSelf = &f
	}
	if e.formattedOpponent != nil {
		f := *e.formattedOpponent
		s.FormattedOpponent = &f
	}
	if s.Derived.DistanceMeters == nil {
		delete(s.Highlights, highlight.Distance)
	}
	return s
}
