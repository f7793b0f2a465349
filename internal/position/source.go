package position

import (
	"context"
	"time"

	"github.com/askwhyharsh/geohunt/internal/location"
	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
)

var (
	ErrPermissionDenied = apperrors.ErrPermissionDenied
	ErrUnavailable      = apperrors.ErrPositionUnavailable
)

// DefaultPollInterval is used by Poll when no interval is given.
const DefaultPollInterval = time.Second

// Source delivers device fixes. Watch blocks until ctx is done or the source
// is exhausted; no callback fires after it returns.
type Source interface {
	Watch(ctx context.Context, onFix func(location.Coordinate), onErr func(error))
}

// Locator answers one-shot position queries.
type Locator interface {
	CurrentPosition(ctx context.Context) (location.Coordinate, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (location.Coordinate, error)

func (f LocatorFunc) CurrentPosition(ctx context.Context) (location.Coordinate, error) {
	return f(ctx)
}

type pollSource struct {
	locator  Locator
	interval time.Duration
}

// Poll turns a one-shot Locator into a Source by asking it on a fixed
// interval. Used when the platform has no continuous watch.
func Poll(locator Locator, interval time.Duration) Source {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &pollSource{locator: locator, interval: interval}
}

func (p *pollSource) Watch(ctx context.Context, onFix func(location.Coordinate), onErr func(error)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		c, err := p.locator.CurrentPosition(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			onErr(err)
		} else {
			onFix(c)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
