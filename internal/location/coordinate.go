package location

import (
	"fmt"
	"math"

	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
)

// Coordinate is a single GPS fix in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports whether the fix is inside the WGS84 latitude/longitude ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidCoordinates, apperrors.ErrInvalidLatitude)
	}
	if math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidCoordinates, apperrors.ErrInvalidLongitude)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}
