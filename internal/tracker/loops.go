package tracker

import (
	"context"
	"time"
)

// pushLoop is the only writer of this session's record. Kicks and ticks
// both send whatever is latest, so bursts of updates collapse into one
// request and an older fix can never land after a newer one.
func (e *Engine) pushLoop(ctx context.Context) {
	ticker := time.NewTicker(e.opts.PushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.kick:
		case <-ticker.C:
		}

		if err := e.PushSelf(ctx); err != nil && ctx.Err() == nil {
			e.logger.Debug("Push failed", "error", err)
		}
	}
}

func (e *Engine) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	e.PollOpponent(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.PollOpponent(ctx)
		}
	}
}

// watchLoop keeps a live subscription to the opponent's writes, retrying
// after a poll interval whenever it drops. Polling continues regardless.
func (e *Engine) watchLoop(ctx context.Context, w Watcher) {
	for {
		err := w.Watch(ctx, e.opponent, e.applyOpponent)
		if ctx.Err() != nil {
			return
		}
		e.logger.Debug("Opponent watch dropped", "opponent", e.opponent.String(), "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(e.opts.PollInterval):
		}
	}
}
