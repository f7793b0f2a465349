package main

import (
	"fmt"
	"strings"

	"github.com/askwhyharsh/geohunt/internal/format"
	"github.com/askwhyharsh/geohunt/internal/highlight"
	"github.com/askwhyharsh/geohunt/internal/location"
	"github.com/askwhyharsh/geohunt/internal/tracker"
)

const (
	reverseOn  = "\x1b[7m"
	reverseOff = "\x1b[0m"
)

func renderSnapshot(s tracker.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", s.Role, s.Difficulty)
	if s.ReadOnly {
		b.WriteString(" read-only")
	}

	b.WriteString(" | you ")
	b.WriteString(renderFormatted(s.FormattedSelf, s.Highlights, highlight.SelfLatitude, highlight.SelfLongitude))
	fmt.Fprintf(&b, " | %s ", s.Opponent)
	b.WriteString(renderFormatted(s.FormattedOpponent, s.Highlights, highlight.OpponentLatitude, highlight.OpponentLongitude))

	b.WriteString(" | ")
	d := s.Derived
	switch {
	case !d.Known:
		b.WriteString("distance Unknown")
	case d.Hidden:
		b.WriteString("distance Hidden")
	default:
		meters := fmt.Sprintf("%d", location.RoundMeters(*d.DistanceMeters))
		fmt.Fprintf(&b, "distance %sm (%s)", emphasize(meters, s.Highlights[highlight.Distance]), d.Proximity)
		if d.Bearing != nil {
			fmt.Fprintf(&b, " %s", *d.Bearing)
		}
		if d.OpponentArea != "" {
			fmt.Fprintf(&b, " area %s", d.OpponentArea)
			if c := d.OpponentAreaCenter; c != nil {
				fmt.Fprintf(&b, " near %.4f,%.4f", c.Latitude, c.Longitude)
			}
		}
	}

	if s.PositionError != nil {
		fmt.Fprintf(&b, " | position: %v", s.PositionError)
	}
	return b.String()
}

func renderViewer(s tracker.ViewerSnapshot) string {
	var b strings.Builder
	for _, p := range s.Pairs {
		predator, prey := s.Roles[p.Pair.Predator], s.Roles[p.Pair.Prey]
		fmt.Fprintf(&b, "%s %s",
			p.Pair.Predator,
			renderFormatted(predator.Formatted, predator.Highlights, highlight.SelfLatitude, highlight.SelfLongitude))
		if predator.Difficulty != nil {
			fmt.Fprintf(&b, " [%s]", *predator.Difficulty)
		}
		fmt.Fprintf(&b, " | %s %s",
			p.Pair.Prey,
			renderFormatted(prey.Formatted, prey.Highlights, highlight.SelfLatitude, highlight.SelfLongitude))
		if p.DistanceMeters != nil {
			fmt.Fprintf(&b, " | %dm\n", *p.DistanceMeters)
		} else {
			b.WriteString(" | Unknown\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderFormatted(f *format.Formatted, live map[highlight.Field][]int, lat, lon highlight.Field) string {
	if f == nil {
		return "Unknown"
	}
	return emphasize(f.Latitude, live[lat]) + ", " + emphasize(f.Longitude, live[lon])
}

// emphasize wraps the runes at indices in reverse video.
func emphasize(s string, indices []int) string {
	if len(indices) == 0 {
		return s
	}
	marked := make(map[int]bool, len(indices))
	for _, i := range indices {
		marked[i] = true
	}

	var b strings.Builder
	for i, r := range []rune(s) {
		if marked[i] {
			b.WriteString(reverseOn)
			b.WriteRune(r)
			b.WriteString(reverseOff)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
