package location

import "github.com/mmcloughlin/geohash"

// MaxAreaPrecision is the longest geohash we hand out.
const MaxAreaPrecision = 12

// Area encodes the fix as a geohash cell. Shorter precision means a larger
// cell; zero yields "".
func Area(c Coordinate, precision uint) string {
	if precision == 0 {
		return ""
	}
	if precision > MaxAreaPrecision {
		precision = MaxAreaPrecision
	}
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, precision)
}

// AreaCenter returns the centre of a geohash cell.
func AreaCenter(hash string) Coordinate {
	lat, lng := geohash.DecodeCenter(hash)
	return Coordinate{Latitude: lat, Longitude: lng}
}

// AreaContains reports whether the fix lies inside the cell.
func AreaContains(hash string, c Coordinate) bool {
	return geohash.BoundingBox(hash).Contains(c.Latitude, c.Longitude)
}
