package location

import "math"

// Arrow is one of the eight compass glyphs.
type Arrow string

const (
	ArrowNorth     Arrow = "↑"
	ArrowNorthEast Arrow = "↗"
	ArrowEast      Arrow = "→"
	ArrowSouthEast Arrow = "↘"
	ArrowSouth     Arrow = "↓"
	ArrowSouthWest Arrow = "↙"
	ArrowWest      Arrow = "←"
	ArrowNorthWest Arrow = "↖"
)

// Arrows lists the glyphs clockwise from north; index i covers i*45 degrees.
var Arrows = [8]Arrow{
	ArrowNorth, ArrowNorthEast, ArrowEast, ArrowSouthEast,
	ArrowSouth, ArrowSouthWest, ArrowWest, ArrowNorthWest,
}

// BearingDegrees is atan2(Δlon, Δlat) in degrees, normalized to [0, 360).
// It treats the degree deltas as planar, which is all the arrow needs.
func BearingDegrees(from, to Coordinate) float64 {
	angle := toDegrees(math.Atan2(to.Longitude-from.Longitude, to.Latitude-from.Latitude))
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}

// BearingArrow points from one fix towards another using the nearest of the
// eight 45 degree sectors. Identical fixes give atan2(0, 0) = 0, i.e. north.
func BearingArrow(from, to Coordinate) Arrow {
	sector := int(math.Round(BearingDegrees(from, to)/45)) % 8
	return Arrows[sector]
}
