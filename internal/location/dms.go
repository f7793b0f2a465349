package location

import (
	"fmt"
	"math"
)

// DMS is a degrees/minutes/seconds rendering of one axis.
type DMS struct {
	Degrees   int
	Minutes   int
	Seconds   float64
	Direction string
}

// DecimalToDMS splits a decimal degree value. Zero takes the positive
// direction (N or E).
func DecimalToDMS(value float64, isLatitude bool) DMS {
	abs := math.Abs(value)
	degrees := math.Floor(abs)
	minutesDecimal := (abs - degrees) * 60
	minutes := math.Floor(minutesDecimal)
	seconds := (minutesDecimal - minutes) * 60

	return DMS{
		Degrees:   int(degrees),
		Minutes:   int(minutes),
		Seconds:   seconds,
		Direction: direction(value, isLatitude),
	}
}

func direction(value float64, isLatitude bool) string {
	if isLatitude {
		if value < 0 {
			return "S"
		}
		return "N"
	}
	if value < 0 {
		return "W"
	}
	return "E"
}

// Decimal converts back to signed decimal degrees.
func (d DMS) Decimal() float64 {
	v := float64(d.Degrees) + float64(d.Minutes)/60 + d.Seconds/3600
	if d.Direction == "S" || d.Direction == "W" {
		return -v
	}
	return v
}

// FormatDMS renders DDD°MM'SS.SSSS" X with fixed column widths so two
// renderings can be compared position by position.
func FormatDMS(d DMS) string {
	degrees, minutes := d.Degrees, d.Minutes
	seconds := math.Round(d.Seconds*10000) / 10000
	if seconds >= 60 {
		seconds -= 60
		minutes++
	}
	if minutes >= 60 {
		minutes -= 60
		degrees++
	}
	return fmt.Sprintf("%3d°%02d'%07.4f\" %s", degrees, minutes, seconds, d.Direction)
}
