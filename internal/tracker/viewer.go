package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/askwhyharsh/geohunt/internal/diff"
	"github.com/askwhyharsh/geohunt/internal/format"
	"github.com/askwhyharsh/geohunt/internal/highlight"
	"github.com/askwhyharsh/geohunt/internal/location"
	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/internal/store"
	"github.com/askwhyharsh/geohunt/pkg/logger"
)

type ViewerOptions struct {
	System         format.System
	PollInterval   time.Duration
	RequestTimeout time.Duration
	HighlightTTL   time.Duration
	OnChange       func(ViewerSnapshot)
}

// RoleView is one role as the viewer last saw it.
type RoleView struct {
	Coordinate *location.Coordinate
	Formatted  *format.Formatted
	Difficulty *role.Difficulty
	// Highlights uses the Self* fields for the role's own axes.
	Highlights map[highlight.Field][]int
}

// PairView is the distance inside one predator/prey pair, nil until both
// members have reported.
type PairView struct {
	Pair           role.Pair
	DistanceMeters *int
}

type ViewerSnapshot struct {
	System format.System
	Roles  map[role.Role]RoleView
	Pairs  []PairView
}

// Viewer observes all four roles without ever writing.
type Viewer struct {
	opts   ViewerOptions
	remote RemoteStore
	logger logger.Logger

	mu         sync.RWMutex
	system     format.System
	coords     map[role.Role]location.Coordinate
	formatted  map[role.Role]format.Formatted
	difficulty map[role.Role]role.Difficulty
	highlights map[role.Role]*highlight.Set
	started    bool
	stopped    bool
	cancel     context.CancelFunc

	wg sync.WaitGroup

	// notifyMu serializes OnChange so Stop can wait out a callback in flight.
	notifyMu sync.Mutex
}

func NewViewer(opts ViewerOptions, remote RemoteStore, log logger.Logger) (*Viewer, error) {
	if remote == nil {
		return nil, errors.New("tracker: remote store is required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.HighlightTTL <= 0 {
		opts.HighlightTTL = highlight.DefaultTTL
	}

	v := &Viewer{
		opts:       opts,
		remote:     remote,
		logger:     log.With("component", "viewer"),
		system:     opts.System,
		coords:     make(map[role.Role]location.Coordinate),
		formatted:  make(map[role.Role]format.Formatted),
		difficulty: make(map[role.Role]role.Difficulty),
		highlights: make(map[role.Role]*highlight.Set),
	}
	for _, r := range role.All() {
		v.highlights[r] = highlight.NewSet(opts.HighlightTTL, v.notify, highlight.SelfLatitude, highlight.SelfLongitude)
	}
	return v, nil
}

func (v *Viewer) Start(ctx context.Context) {
	v.mu.Lock()
	if v.started || v.stopped {
		v.mu.Unlock()
		return
	}
	v.started = true
	ctx, v.cancel = context.WithCancel(ctx)
	v.mu.Unlock()

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		ticker := time.NewTicker(v.opts.PollInterval)
		defer ticker.Stop()

		v.Refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				v.Refresh(ctx)
			}
		}
	}()

	if w, ok := v.remote.(Watcher); ok {
		for _, r := range role.All() {
			v.wg.Add(1)
			go func() {
				defer v.wg.Done()
				v.watch(ctx, w, r)
			}()
		}
	}
}

func (v *Viewer) Stop() {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return
	}
	v.stopped = true
	cancel := v.cancel
	v.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	v.wg.Wait()
	for _, set := range v.highlights {
		set.ClearAll()
	}

	v.notifyMu.Lock()
	v.notifyMu.Unlock()
}

// Refresh polls every role once.
func (v *Viewer) Refresh(ctx context.Context) {
	for _, r := range role.All() {
		reqCtx, cancel := context.WithTimeout(ctx, v.opts.RequestTimeout)
		rec, err := v.remote.Get(reqCtx, r)
		cancel()
		if err != nil {
			v.logger.Debug("Viewer poll failed", "role", r.String(), "error", err)
			continue
		}
		if rec != nil {
			v.Apply(r, *rec)
		}
	}
}

func (v *Viewer) watch(ctx context.Context, w Watcher, r role.Role) {
	for {
		err := w.Watch(ctx, r, func(rec store.Record) { v.Apply(r, rec) })
		if ctx.Err() != nil {
			return
		}
		v.logger.Debug("Viewer watch dropped", "role", r.String(), "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(v.opts.PollInterval):
		}
	}
}

// Apply folds one record into the view.
func (v *Viewer) Apply(r role.Role, rec store.Record) {
	c := rec.Coordinate()
	if err := c.Validate(); err != nil {
		return
	}

	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return
	}
	prevCoord, seen := v.coords[r]
	prevDifficulty, hadDifficulty := v.difficulty[r]
	difficultyChanged := rec.Difficulty != nil && (!hadDifficulty || prevDifficulty != *rec.Difficulty)
	if seen && prevCoord == c && !difficultyChanged {
		v.mu.Unlock()
		return
	}

	previous, hadPrevious := v.formatted[r]
	current := format.FormatCoordinate(c, v.system)
	v.coords[r] = c
	v.formatted[r] = current
	if rec.Difficulty != nil {
		v.difficulty[r] = *rec.Difficulty
	}
	if hadPrevious {
		set := v.highlights[r]
		set.Mark(highlight.SelfLatitude, diff.ChangedIndices(previous.Latitude, current.Latitude))
		set.Mark(highlight.SelfLongitude, diff.ChangedIndices(previous.Longitude, current.Longitude))
	}
	v.mu.Unlock()

	v.notify()
}

// SetCoordinateSystem re-renders every role without highlighting.
func (v *Viewer) SetCoordinateSystem(s format.System) {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return
	}
	v.system = s
	for r, c := range v.coords {
		v.formatted[r] = format.FormatCoordinate(c, s)
		v.highlights[r].ClearAll()
	}
	v.mu.Unlock()

	v.notify()
}

func (v *Viewer) Snapshot() ViewerSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := ViewerSnapshot{
		System: v.system,
		Roles:  make(map[role.Role]RoleView, len(role.All())),
	}
	for _, r := range role.All() {
		view := RoleView{Highlights: v.highlights[r].Live()}
		if c, ok := v.coords[r]; ok {
			view.Coordinate = &c
		}
		if f, ok := v.formatted[r]; ok {
			view.Formatted = &f
		}
		if d, ok := v.difficulty[r]; ok {
			view.Difficulty = &d
		}
		s.Roles[r] = view
	}
	for _, p := range role.Pairs() {
		pv := PairView{Pair: p}
		a, okA := v.coords[p.Predator]
		b, okB := v.coords[p.Prey]
		if okA && okB {
			meters := location.RoundMeters(location.DistanceMeters(a, b))
			pv.DistanceMeters = &meters
		}
		s.Pairs = append(s.Pairs, pv)
	}
	return s
}

func (v *Viewer) notify() {
	if v.opts.OnChange == nil {
		return
	}
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	v.mu.RLock()
	stopped := v.stopped
	v.mu.RUnlock()
	if stopped {
		return
	}
	v.opts.OnChange(v.Snapshot())
}
