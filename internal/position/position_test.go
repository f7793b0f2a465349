package position

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/askwhyharsh/geohunt/internal/location"
	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFix(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    location.Coordinate
		wantErr bool
	}{
		{"comma", "49.2827,-123.1207", location.Coordinate{Latitude: 49.2827, Longitude: -123.1207}, false},
		{"space", "0 0", location.Coordinate{}, false},
		{"comma and space", " -33.8688, 151.2093 ", location.Coordinate{Latitude: -33.8688, Longitude: 151.2093}, false},
		{"one field", "49.2", location.Coordinate{}, true},
		{"not a number", "north,west", location.Coordinate{}, true},
		{"out of range", "91,0", location.Coordinate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFix(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidCoordinates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReaderSource(t *testing.T) {
	input := strings.Join([]string{
		"# route",
		"49.0,-123.0",
		"",
		"garbage",
		"49.1,-123.1",
	}, "\n")

	var fixes []location.Coordinate
	var errs []error
	NewReader(strings.NewReader(input)).Watch(context.Background(),
		func(c location.Coordinate) { fixes = append(fixes, c) },
		func(err error) { errs = append(errs, err) },
	)

	require.Len(t, fixes, 2)
	assert.Equal(t, 49.1, fixes[1].Latitude)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], apperrors.ErrInvalidCoordinates)
}

func TestFeed(t *testing.T) {
	feed := NewFeed()
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var fixes []location.Coordinate
	var errs []error

	done := make(chan struct{})
	go func() {
		defer close(done)
		feed.Watch(ctx,
			func(c location.Coordinate) {
				mu.Lock()
				fixes = append(fixes, c)
				mu.Unlock()
			},
			func(err error) {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			},
		)
	}()

	require.True(t, feed.Push(location.Coordinate{Latitude: 1, Longitude: 2}))
	require.True(t, feed.Fail(ErrPermissionDenied))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fixes) == 1 && len(errs) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, errs[0], apperrors.ErrPermissionDenied)
}

func TestFeed_DropsWhenFull(t *testing.T) {
	feed := NewFeed()
	for range feedBuffer {
		require.True(t, feed.Push(location.Coordinate{}))
	}
	assert.False(t, feed.Push(location.Coordinate{}))
}

func TestPoll(t *testing.T) {
	var calls atomic.Int32
	locator := LocatorFunc(func(ctx context.Context) (location.Coordinate, error) {
		n := calls.Add(1)
		if n == 2 {
			return location.Coordinate{}, ErrUnavailable
		}
		return location.Coordinate{Latitude: float64(n)}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fixCount, errCount atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		Poll(locator, 10*time.Millisecond).Watch(ctx,
			func(location.Coordinate) { fixCount.Add(1) },
			func(err error) {
				if errors.Is(err, ErrUnavailable) {
					errCount.Add(1)
				}
			},
		)
	}()

	require.Eventually(t, func() bool {
		return fixCount.Load() >= 2 && errCount.Load() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	after := fixCount.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, fixCount.Load())
}
