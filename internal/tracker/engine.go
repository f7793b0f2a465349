// Package tracker keeps one player's position and their opponent's in sync
// with the coordinate server and derives what the player is allowed to see.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/askwhyharsh/geohunt/internal/diff"
	"github.com/askwhyharsh/geohunt/internal/format"
	"github.com/askwhyharsh/geohunt/internal/highlight"
	"github.com/askwhyharsh/geohunt/internal/location"
	"github.com/askwhyharsh/geohunt/internal/position"
	"github.com/askwhyharsh/geohunt/internal/prefs"
	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/internal/store"
	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
	"github.com/askwhyharsh/geohunt/pkg/logger"
)

const (
	DefaultPushInterval   = 5 * time.Second
	DefaultPollInterval   = 5 * time.Second
	DefaultRequestTimeout = 5 * time.Second
)

// RemoteStore is the coordinate server as the engine sees it.
type RemoteStore interface {
	Put(ctx context.Context, r role.Role, rec store.Record) error
	Get(ctx context.Context, r role.Role) (*store.Record, error)
}

// Watcher is implemented by remotes that can stream writes as they happen.
type Watcher interface {
	Watch(ctx context.Context, r role.Role, fn func(store.Record)) error
}

type Options struct {
	Role       role.Role
	Difficulty role.Difficulty
	System     format.System
	// ReadOnly engines observe but never write their own record.
	ReadOnly       bool
	PushInterval   time.Duration
	PollInterval   time.Duration
	RequestTimeout time.Duration
	HighlightTTL   time.Duration
	Prefs          prefs.Saver
	// OnChange receives a fresh Snapshot after every state change. It is
	// called without any engine lock held, one call at a time, and must not
	// call Stop.
	OnChange func(Snapshot)
}

func (o *Options) setDefaults() {
	if o.PushInterval <= 0 {
		o.PushInterval = DefaultPushInterval
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.HighlightTTL <= 0 {
		o.HighlightTTL = highlight.DefaultTTL
	}
}

// Engine is one player session. All exported methods are safe for
// concurrent use and none of them block on the network.
type Engine struct {
	opts     Options
	self     role.Role
	opponent role.Role
	remote   RemoteStore
	source   position.Source
	logger   logger.Logger

	mu                sync.RWMutex
	difficulty        role.DifficultyControl
	system            format.System
	lastSelf          *location.Coordinate
	lastOpponent      *location.Coordinate
	formattedSelf     *format.Formatted
	formattedOpponent *format.Formatted
	distanceText      string
	positionErr       error
	started           bool
	stopped           bool
	cancel            context.CancelFunc

	// notifyMu serializes OnChange so Stop can wait out a callback in flight.
	notifyMu sync.Mutex

	highlights *highlight.Set
	kick       chan struct{}
	wg         sync.WaitGroup
}

// New builds an engine for opts.Role. source may be nil when fixes are fed
// through OnPositionUpdate directly.
func New(opts Options, remote RemoteStore, source position.Source, log logger.Logger) (*Engine, error) {
	if remote == nil {
		return nil, errors.New("tracker: remote store is required")
	}
	if _, err := role.Parse(opts.Role.String()); err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	opts.setDefaults()

	e := &Engine{
		opts:       opts,
		self:       opts.Role,
		opponent:   role.OpponentOf(opts.Role),
		remote:     remote,
		source:     source,
		logger:     log.With("role", opts.Role.String()),
		difficulty: role.ControlFor(opts.Role, opts.Difficulty),
		system:     opts.System,
		kick:       make(chan struct{}, 1),
	}
	e.highlights = highlight.NewSet(opts.HighlightTTL, e.notify, highlight.Fields...)
	return e, nil
}

func (e *Engine) Role() role.Role {
	return e.self
}

func (e *Engine) Opponent() role.Role {
	return e.opponent
}

// Start launches the position watch, the push worker and the opponent poll
// loop. They all stop together on Stop or when ctx is done.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.started = true
	ctx, e.cancel = context.WithCancel(ctx)
	e.mu.Unlock()

	if e.source != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.source.Watch(ctx, e.OnPositionUpdate, e.onPositionError)
		}()
	}

	if !e.opts.ReadOnly {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.pushLoop(ctx)
		}()
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.pollLoop(ctx)
	}()

	if w, ok := e.remote.(Watcher); ok {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.watchLoop(ctx, w)
		}()
	}

	e.logger.Debug("Engine started", "opponent", e.opponent.String(), "read_only", e.opts.ReadOnly)
}

// Stop cancels every loop, waits for them and drops pending highlights.
// After Stop all mutating calls are no-ops.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
	e.highlights.ClearAll()

	e.notifyMu.Lock()
	e.notifyMu.Unlock()
	e.logger.Debug("Engine stopped")
}

// OnPositionUpdate records a fresh device fix. Invalid fixes are dropped.
func (e *Engine) OnPositionUpdate(c location.Coordinate) {
	if err := c.Validate(); err != nil {
		e.logger.Debug("Dropping invalid fix", "fix", c.String(), "error", err)
		return
	}

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	previous := e.formattedSelf
	e.lastSelf = &c
	current := format.FormatCoordinate(c, e.system)
	e.formattedSelf = &current
	if previous != nil {
		e.highlights.Mark(highlight.SelfLatitude, diff.ChangedIndices(previous.Latitude, current.Latitude))
		e.highlights.Mark(highlight.SelfLongitude, diff.ChangedIndices(previous.Longitude, current.Longitude))
	}
	e.positionErr = nil
	e.updateDistanceLocked()
	e.mu.Unlock()

	e.schedulePush()
	e.notify()
}

func (e *Engine) onPositionError(err error) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.positionErr = err
	e.mu.Unlock()

	e.logger.Debug("Position unavailable", "error", err)
	e.notify()
}

// PollOpponent fetches the opponent's record once. Failures and a missing
// record leave the last known value in place.
func (e *Engine) PollOpponent(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.RequestTimeout)
	defer cancel()

	rec, err := e.remote.Get(ctx, e.opponent)
	if err != nil {
		e.logger.Debug("Opponent poll failed", "opponent", e.opponent.String(), "error", err)
		return
	}
	if rec == nil {
		return
	}
	e.applyOpponent(*rec)
}

func (e *Engine) applyOpponent(rec store.Record) {
	c := rec.Coordinate()
	if err := c.Validate(); err != nil {
		e.logger.Debug("Ignoring invalid opponent record", "error", err)
		return
	}

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}

	moved := e.lastOpponent == nil || *e.lastOpponent != c
	adopted := false
	if mirror, ok := e.difficulty.(*role.Mirror); ok && rec.Difficulty != nil {
		adopted = mirror.Adopt(*rec.Difficulty)
	}
	if !moved && !adopted {
		e.mu.Unlock()
		return
	}

	if moved {
		previous := e.formattedOpponent
		e.lastOpponent = &c
		current := format.FormatCoordinate(c, e.system)
		e.formattedOpponent = &current
		if previous != nil {
			e.highlights.Mark(highlight.OpponentLatitude, diff.ChangedIndices(previous.Latitude, current.Latitude))
			e.highlights.Mark(highlight.OpponentLongitude, diff.ChangedIndices(previous.Longitude, current.Longitude))
		}
		e.updateDistanceLocked()
	}
	e.mu.Unlock()

	e.notify()
}

// SetDifficulty changes the shared difficulty and pushes it right away.
// Only predator sessions hold the authority to do so.
func (e *Engine) SetDifficulty(d role.Difficulty) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil
	}
	auth, ok := e.difficulty.(*role.Authority)
	if !ok {
		e.mu.Unlock()
		return apperrors.ErrNotDifficultyAuthority
	}
	changed := auth.Set(d)
	e.mu.Unlock()

	if changed {
		e.savePrefs()
		e.notify()
	}
	e.schedulePush()
	return nil
}

// SetCoordinateSystem re-renders both fixes. A system switch is not motion:
// no diff runs and pending coordinate highlights are dropped.
func (e *Engine) SetCoordinateSystem(s format.System) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.system = s
	if e.lastSelf != nil {
		f := format.FormatCoordinate(*e.lastSelf, s)
		e.formattedSelf = &f
	}
	if e.lastOpponent != nil {
		f := format.FormatCoordinate(*e.lastOpponent, s)
		e.formattedOpponent = &f
	}
	e.highlights.Clear(
		highlight.SelfLatitude,
		highlight.SelfLongitude,
		highlight.OpponentLatitude,
		highlight.OpponentLongitude,
	)
	e.mu.Unlock()

	e.savePrefs()
	e.notify()
}

// PushSelf writes the latest own fix once. Prey sessions never send a
// difficulty.
func (e *Engine) PushSelf(ctx context.Context) error {
	if e.opts.ReadOnly {
		return nil
	}

	e.mu.RLock()
	if e.lastSelf == nil {
		e.mu.RUnlock()
		return nil
	}
	rec := store.NewRecord(*e.lastSelf, nil)
	if auth, ok := e.difficulty.(*role.Authority); ok {
		d := auth.Current()
		rec.Difficulty = &d
	}
	e.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, e.opts.RequestTimeout)
	defer cancel()
	return e.remote.Put(ctx, e.self, rec)
}

func (e *Engine) schedulePush() {
	if e.opts.ReadOnly {
		return
	}
	select {
	case e.kick <- struct{}{}:
	default:
		// a push is already pending and will carry the latest state
	}
}

// updateDistanceLocked diffs the rounded distance like a coordinate.
func (e *Engine) updateDistanceLocked() {
	if e.lastSelf == nil || e.lastOpponent == nil {
		return
	}
	text := fmt.Sprintf("%d", location.RoundMeters(location.DistanceMeters(*e.lastSelf, *e.lastOpponent)))
	if text == e.distanceText {
		return
	}
	if e.distanceText != "" {
		e.highlights.Mark(highlight.Distance, diff.ChangedIndices(e.distanceText, text))
	}
	e.distanceText = text
}

func (e *Engine) savePrefs() {
	if e.opts.Prefs == nil {
		return
	}

	e.mu.RLock()
	r := e.self
	p := prefs.Preferences{
		Role:       &r,
		Difficulty: e.difficulty.Current(),
		System:     e.system,
	}
	e.mu.RUnlock()

	if err := e.opts.Prefs.Save(p); err != nil {
		e.logger.Warn("Failed to save preferences", "error", err)
	}
}

func (e *Engine) notify() {
	if e.opts.OnChange == nil {
		return
	}
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	e.mu.RLock()
	stopped := e.stopped
	e.mu.RUnlock()
	if stopped {
		return
	}
	e.opts.OnChange(e.Snapshot())
}
