package position

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/askwhyharsh/geohunt/internal/location"
	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
)

type readerSource struct {
	r io.Reader
}

// NewReader returns a Source reading one "lat,lon" fix per line. Blank lines
// and lines starting with # are skipped. Watch returns at EOF.
func NewReader(r io.Reader) Source {
	return &readerSource{r: r}
}

func (s *readerSource) Watch(ctx context.Context, onFix func(location.Coordinate), onErr func(error)) {
	lines := make(chan string)
	done := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(s.r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		done <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-done:
			if err != nil {
				onErr(fmt.Errorf("%w: %v", ErrUnavailable, err))
			}
			return
		case line := <-lines:
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			c, err := ParseFix(line)
			if err != nil {
				onErr(err)
				continue
			}
			onFix(c)
		}
	}
}

// ParseFix reads "lat,lon" or "lat lon" and validates the result.
func ParseFix(s string) (location.Coordinate, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return location.Coordinate{}, fmt.Errorf("%w: expected \"lat,lon\", got %q", apperrors.ErrInvalidCoordinates, s)
	}

	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return location.Coordinate{}, fmt.Errorf("%w: latitude %q", apperrors.ErrInvalidCoordinates, fields[0])
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return location.Coordinate{}, fmt.Errorf("%w: longitude %q", apperrors.ErrInvalidCoordinates, fields[1])
	}

	c := location.Coordinate{Latitude: lat, Longitude: lon}
	if err := c.Validate(); err != nil {
		return location.Coordinate{}, err
	}
	return c, nil
}
