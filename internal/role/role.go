package role

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
)

// Role is one of the four fixed player roles. Hawk and Falcon hunt,
// Bluebird and Starling are hunted.
type Role int

const (
	Hawk Role = iota
	Bluebird
	Falcon
	Starling
)

func (r Role) String() string {
	switch r {
	case Hawk:
		return "hawk"
	case Bluebird:
		return "bluebird"
	case Falcon:
		return "falcon"
	case Starling:
		return "starling"
	default:
		return "unknown"
	}
}

// Parse maps a wire name to a Role.
func Parse(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hawk":
		return Hawk, nil
	case "bluebird":
		return Bluebird, nil
	case "falcon":
		return Falcon, nil
	case "starling":
		return Starling, nil
	default:
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidRole, s)
	}
}

// All returns every role in declaration order.
func All() []Role {
	return []Role{Hawk, Bluebird, Falcon, Starling}
}

// Pair is one predator/prey matchup.
type Pair struct {
	Predator Role
	Prey     Role
}

// Pairs returns the two independent matchups.
func Pairs() []Pair {
	return []Pair{
		{Predator: Hawk, Prey: Bluebird},
		{Predator: Falcon, Prey: Starling},
	}
}

// OpponentOf returns the fixed opponent. It is its own inverse.
func OpponentOf(r Role) Role {
	switch r {
	case Hawk:
		return Bluebird
	case Bluebird:
		return Hawk
	case Falcon:
		return Starling
	default:
		return Falcon
	}
}

// IsDifficultyAuthority reports whether r may originate difficulty changes.
// Only the predators can; their prey mirror whatever was last stored.
func IsDifficultyAuthority(r Role) bool {
	return r == Hawk || r == Falcon
}

// MarshalJSON serializes Role as a string.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON deserializes Role from a string.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
