// Package format renders coordinates into fixed-width display strings so
// successive renderings of a field line up character for character.
package format

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/askwhyharsh/geohunt/internal/location"
	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
)

// System is the coordinate notation used for display.
type System int

const (
	SystemDecimal System = iota
	SystemDMS
)

const (
	// nbsp keeps padded columns from collapsing in the display layer.
	nbsp = '\u00a0'

	decimalPlaces = 6
	intWidth      = 4
	DecimalWidth  = intWidth + 1 + decimalPlaces
	DMSWidth      = 17
)

func (s System) String() string {
	switch s {
	case SystemDMS:
		return "dms"
	default:
		return "decimal"
	}
}

// ParseSystem accepts "decimal" or "dms".
func ParseSystem(s string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "decimal":
		return SystemDecimal, nil
	case "dms":
		return SystemDMS, nil
	default:
		return SystemDecimal, fmt.Errorf("%w: %q", apperrors.ErrInvalidSystem, s)
	}
}

// Toggle returns the other system.
func (s System) Toggle() System {
	if s == SystemDMS {
		return SystemDecimal
	}
	return SystemDMS
}

// MarshalJSON serializes System as a string.
func (s System) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes System from a string.
func (s *System) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSystem(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Formatted is a display-ready rendering of one fix.
type Formatted struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Format renders one axis. For a given system the result always has the
// same rune count (DecimalWidth or DMSWidth) across the valid range.
func Format(value float64, isLatitude bool, system System) string {
	if system == SystemDMS {
		return location.FormatDMS(location.DecimalToDMS(value, isLatitude))
	}
	return formatDecimal(value)
}

// FormatCoordinate renders both axes of a fix.
func FormatCoordinate(c location.Coordinate, system System) Formatted {
	return Formatted{
		Latitude:  Format(c.Latitude, true, system),
		Longitude: Format(c.Longitude, false, system),
	}
}

func formatDecimal(value float64) string {
	s := strconv.FormatFloat(value, 'f', decimalPlaces, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	intPart = padLeft(intPart, intWidth)
	if !hasFrac {
		return padRight(intPart, DecimalWidth, nbsp)
	}
	return intPart + "." + padRight(fracPart, decimalPlaces, '0')
}

func padLeft(s string, width int) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	return strings.Repeat(string(nbsp), n) + s
}

func padRight(s string, width int, fill rune) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	return s + strings.Repeat(string(fill), n)
}
