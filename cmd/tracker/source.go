package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/askwhyharsh/geohunt/internal/location"
	"github.com/askwhyharsh/geohunt/internal/position"
)

// openSource picks where fixes come from. The returned closer is nil when
// nothing needs releasing.
func openSource(path string, pollEvery time.Duration) (position.Source, *position.Feed, io.Closer, error) {
	if path == "" {
		feed := position.NewFeed()
		return feed, feed, nil, nil
	}
	if pollEvery > 0 {
		return position.Poll(fileLocator(path), pollEvery), nil, nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", position.ErrUnavailable, err)
	}
	return position.NewReader(f), nil, f, nil
}

// fileLocator reports the last fix written to path, the way a GPS daemon
// keeps its latest reading in a file.
func fileLocator(path string) position.Locator {
	return position.LocatorFunc(func(ctx context.Context) (location.Coordinate, error) {
		f, err := os.Open(path)
		if err != nil {
			if os.IsPermission(err) {
				return location.Coordinate{}, fmt.Errorf("%w: %v", position.ErrPermissionDenied, err)
			}
			return location.Coordinate{}, fmt.Errorf("%w: %v", position.ErrUnavailable, err)
		}
		defer f.Close()
		return lastFix(f)
	})
}

func lastFix(r io.Reader) (location.Coordinate, error) {
	var last string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		last = line
	}
	if err := scanner.Err(); err != nil {
		return location.Coordinate{}, fmt.Errorf("%w: %v", position.ErrUnavailable, err)
	}
	if last == "" {
		return location.Coordinate{}, fmt.Errorf("%w: no fix yet", position.ErrUnavailable)
	}
	return position.ParseFix(last)
}
