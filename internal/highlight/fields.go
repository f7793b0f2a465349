package highlight

import "time"

// Field names one highlightable display value.
type Field int

const (
	SelfLatitude Field = iota
	SelfLongitude
	OpponentLatitude
	OpponentLongitude
	Distance
)

// Fields lists every highlightable field.
var Fields = []Field{SelfLatitude, SelfLongitude, OpponentLatitude, OpponentLongitude, Distance}

func (f Field) String() string {
	switch f {
	case SelfLatitude:
		return "self_latitude"
	case SelfLongitude:
		return "self_longitude"
	case OpponentLatitude:
		return "opponent_latitude"
	case OpponentLongitude:
		return "opponent_longitude"
	case Distance:
		return "distance"
	default:
		return "unknown"
	}
}

// Set is one Expiring index list per field.
type Set struct {
	fields map[Field]*Expiring[[]int]
}

// NewSet builds expiring slots for fields. onExpire runs whenever any slot
// clears itself.
func NewSet(ttl time.Duration, onExpire func(), fields ...Field) *Set {
	s := &Set{fields: make(map[Field]*Expiring[[]int], len(fields))}
	for _, f := range fields {
		s.fields[f] = NewExpiring[[]int](ttl, onExpire)
	}
	return s
}

// Mark highlights indices on f. An empty list clears f instead.
func (s *Set) Mark(f Field, indices []int) {
	slot, ok := s.fields[f]
	if !ok {
		return
	}
	if len(indices) == 0 {
		slot.Clear()
		return
	}
	slot.Set(indices)
}

// Clear drops the highlights on the given fields.
func (s *Set) Clear(fields ...Field) {
	for _, f := range fields {
		if slot, ok := s.fields[f]; ok {
			slot.Clear()
		}
	}
}

// ClearAll drops every highlight and stops all timers.
func (s *Set) ClearAll() {
	for _, slot := range s.fields {
		slot.Clear()
	}
}

// Live returns a copy of every field that currently has a highlight.
func (s *Set) Live() map[Field][]int {
	out := make(map[Field][]int)
	for f, slot := range s.fields {
		if v, ok := slot.Get(); ok {
			out[f] = append([]int(nil), v...)
		}
	}
	return out
}
