package role

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
)

// Difficulty controls how much the prey's position is revealed to the
// predator. Ordered from least to most revealing.
type Difficulty int

const (
	Extreme Difficulty = iota
	Hard
	Medium
	Easy
)

// DefaultDifficulty is used until a predator picks one.
const DefaultDifficulty = Medium

func (d Difficulty) String() string {
	switch d {
	case Extreme:
		return "Extreme"
	case Hard:
		return "Hard"
	case Medium:
		return "Medium"
	case Easy:
		return "Easy"
	default:
		return "Unknown"
	}
}

// ParseDifficulty accepts the wire names, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "extreme":
		return Extreme, nil
	case "hard":
		return Hard, nil
	case "medium":
		return Medium, nil
	case "easy":
		return Easy, nil
	default:
		return DefaultDifficulty, fmt.Errorf("%w: %q", apperrors.ErrInvalidDifficulty, s)
	}
}

// Difficulties lists every level from hardest to easiest.
func Difficulties() []Difficulty {
	return []Difficulty{Extreme, Hard, Medium, Easy}
}

// ShowsDistance is false only for Extreme.
func (d Difficulty) ShowsDistance() bool {
	return d != Extreme
}

// ShowsBearing is true for Medium and Easy.
func (d Difficulty) ShowsBearing() bool {
	return d == Medium || d == Easy
}

// AreaPrecision is the geohash length used to reveal the opponent's area;
// zero reveals nothing.
func (d Difficulty) AreaPrecision() uint {
	switch d {
	case Medium:
		return 6
	case Easy:
		return 8
	default:
		return 0
	}
}

// MarshalJSON serializes Difficulty as a string.
func (d Difficulty) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON deserializes Difficulty from a string.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDifficulty(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
