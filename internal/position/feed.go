package position

import (
	"context"

	"github.com/askwhyharsh/geohunt/internal/location"
)

const feedBuffer = 16

type event struct {
	fix location.Coordinate
	err error
}

// Feed is a Source driven by explicit Push calls, e.g. from a command line.
type Feed struct {
	events chan event
}

func NewFeed() *Feed {
	return &Feed{events: make(chan event, feedBuffer)}
}

// Push queues a fix. It returns false when the buffer is full and the fix
// was dropped.
func (f *Feed) Push(c location.Coordinate) bool {
	return f.send(event{fix: c})
}

// Fail queues an error for the watcher.
func (f *Feed) Fail(err error) bool {
	return f.send(event{err: err})
}

func (f *Feed) send(e event) bool {
	select {
	case f.events <- e:
		return true
	default:
		return false
	}
}

func (f *Feed) Watch(ctx context.Context, onFix func(location.Coordinate), onErr func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-f.events:
			if e.err != nil {
				onErr(e.err)
				continue
			}
			onFix(e.fix)
		}
	}
}
