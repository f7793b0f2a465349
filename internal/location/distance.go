package location

import (
	"math"
)

const earthRadiusMeters = 6371000.0 // Earth's mean radius in meters

// Proximity thresholds in meters
const (
	closeMeters  = 50.0
	nearbyMeters = 500.0
)

// HaversineDistance calculates the distance between two points on Earth in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert to radians
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	deltaLat := toRadians(lat2 - lat1)
	deltaLon := toRadians(lon2 - lon1)

	// Haversine formula
	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	// rounding near antipodes can leave a just outside [0,1]
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// DistanceMeters is the great-circle distance between two fixes.
func DistanceMeters(a, b Coordinate) float64 {
	if a == b {
		return 0
	}
	return HaversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// RoundMeters rounds a distance to whole meters for display.
func RoundMeters(distance float64) int {
	return int(math.Round(distance))
}

// Proximity buckets a distance the way the game screen colours it.
type Proximity int

const (
	ProximityFar Proximity = iota
	ProximityNearby
	ProximityClose
)

func (p Proximity) String() string {
	switch p {
	case ProximityClose:
		return "close"
	case ProximityNearby:
		return "nearby"
	default:
		return "far"
	}
}

// ProximityOf classifies a distance in meters.
func ProximityOf(distance float64) Proximity {
	switch {
	case distance <= closeMeters:
		return ProximityClose
	case distance <= nearbyMeters:
		return ProximityNearby
	default:
		return ProximityFar
	}
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

func toDegrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}
