package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/askwhyharsh/geohunt/internal/format"
	"github.com/askwhyharsh/geohunt/internal/highlight"
	"github.com/askwhyharsh/geohunt/internal/location"
	"github.com/askwhyharsh/geohunt/internal/position"
	"github.com/askwhyharsh/geohunt/internal/prefs"
	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/internal/store"
	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
	"github.com/askwhyharsh/geohunt/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	role   role.Role
	record store.Record
}

// fakeRemote is an in-memory coordinate server that records writes.
type fakeRemote struct {
	*store.Memory

	mu     sync.Mutex
	puts   []putCall
	getErr error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{Memory: store.NewMemory()}
}

func (f *fakeRemote) Put(ctx context.Context, r role.Role, rec store.Record) error {
	f.mu.Lock()
	f.puts = append(f.puts, putCall{role: r, record: rec})
	f.mu.Unlock()
	return f.Memory.Put(ctx, r, rec)
}

func (f *fakeRemote) Get(ctx context.Context, r role.Role) (*store.Record, error) {
	f.mu.Lock()
	err := f.getErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Memory.Get(ctx, r)
}

func (f *fakeRemote) failGets(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

func (f *fakeRemote) putCalls() []putCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]putCall(nil), f.puts...)
}

func newEngine(t *testing.T, opts Options, remote RemoteStore) *Engine {
	t.Helper()
	e, err := New(opts, remote, nil, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Stop)
	return e
}

func coord(lat, lon float64) location.Coordinate {
	return location.Coordinate{Latitude: lat, Longitude: lon}
}

func TestNew_RequiresRemote(t *testing.T) {
	_, err := New(Options{Role: role.Hawk}, nil, nil, nil)
	assert.Error(t, err)

	_, err = New(Options{Role: role.Role(42)}, newFakeRemote(), nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
}

func TestEngine_OpponentIsFixed(t *testing.T) {
	e := newEngine(t, Options{Role: role.Falcon}, newFakeRemote())
	assert.Equal(t, role.Starling, e.Opponent())
}

func TestEngine_FirstFixHasNoHighlights(t *testing.T) {
	e := newEngine(t, Options{Role: role.Hawk}, newFakeRemote())

	e.OnPositionUpdate(coord(49.2827, -123.1207))

	s := e.Snapshot()
	require.NotNil(t, s.FormattedSelf)
	assert.Equal(t, "\u00a0\u00a049.282700", s.FormattedSelf.Latitude)
	assert.Empty(t, s.Highlights)
}

func TestEngine_MotionHighlightsChangedDigits(t *testing.T) {
	e := newEngine(t, Options{Role: role.Hawk, HighlightTTL: 50 * time.Millisecond}, newFakeRemote())

	e.OnPositionUpdate(coord(49.2827, -123.1207))
	e.OnPositionUpdate(coord(49.2828, -123.1207))

	s := e.Snapshot()
	assert.Equal(t, []int{8}, s.Highlights[highlight.SelfLatitude])
	_, ok := s.Highlights[highlight.SelfLongitude]
	assert.False(t, ok, "unchanged axis is not highlighted")

	require.Eventually(t, func() bool {
		return len(e.Snapshot().Highlights) == 0
	}, time.Second, 10*time.Millisecond, "highlights clear themselves")
}

func TestEngine_InvalidFixIsDropped(t *testing.T) {
	remote := newFakeRemote()
	e := newEngine(t, Options{Role: role.Hawk}, remote)

	e.OnPositionUpdate(coord(95, 0))

	assert.Nil(t, e.Snapshot().Self)
	require.NoError(t, e.PushSelf(context.Background()))
	assert.Empty(t, remote.putCalls(), "nothing to push")
}

func TestEngine_OpponentAbsent(t *testing.T) {
	e := newEngine(t, Options{Role: role.Hawk}, newFakeRemote())
	e.OnPositionUpdate(coord(1, 1))

	e.PollOpponent(context.Background())

	s := e.Snapshot()
	assert.Nil(t, s.OpponentCoordinate)
	assert.False(t, e.ComputeDerived().Known)
	assert.Nil(t, e.ComputeDerived().DistanceMeters)
}

func TestEngine_RemoteFailureKeepsLastOpponent(t *testing.T) {
	remote := newFakeRemote()
	require.NoError(t, remote.Memory.Put(context.Background(), role.Bluebird, store.Record{Latitude: 10, Longitude: 20}))
	e := newEngine(t, Options{Role: role.Hawk}, remote)

	e.PollOpponent(context.Background())
	require.NotNil(t, e.Snapshot().OpponentCoordinate)

	remote.failGets(apperrors.ErrRemoteUnavailable)
	e.PollOpponent(context.Background())

	s := e.Snapshot()
	require.NotNil(t, s.OpponentCoordinate)
	assert.Equal(t, 10.0, s.OpponentCoordinate.Latitude)
}

func TestEngine_DifficultyConvergesToPrey(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()

	hawk := newEngine(t, Options{Role: role.Hawk, Difficulty: role.Hard}, remote)
	bluebird := newEngine(t, Options{Role: role.Bluebird, Difficulty: role.Easy}, remote)

	hawk.OnPositionUpdate(coord(49.0, -123.0))
	require.NoError(t, hawk.SetDifficulty(role.Medium))
	require.NoError(t, hawk.PushSelf(ctx))

	bluebird.PollOpponent(ctx)

	assert.Equal(t, role.Medium, bluebird.Snapshot().Difficulty)
	for _, call := range remote.putCalls() {
		assert.Equal(t, role.Hawk, call.role, "adopting a difficulty does not make the prey write")
	}
}

func TestEngine_PreyCannotSetDifficulty(t *testing.T) {
	e := newEngine(t, Options{Role: role.Starling, Difficulty: role.Easy}, newFakeRemote())

	err := e.SetDifficulty(role.Extreme)
	assert.ErrorIs(t, err, apperrors.ErrNotDifficultyAuthority)
	assert.Equal(t, role.Easy, e.Snapshot().Difficulty)
}

func TestEngine_PreyPushesWithoutDifficulty(t *testing.T) {
	remote := newFakeRemote()
	e := newEngine(t, Options{Role: role.Starling, Difficulty: role.Hard}, remote)

	e.OnPositionUpdate(coord(3, 4))
	require.NoError(t, e.PushSelf(context.Background()))

	calls := remote.putCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, role.Starling, calls[0].role)
	assert.Nil(t, calls[0].record.Difficulty)
}

func TestEngine_PredatorPushesDifficulty(t *testing.T) {
	remote := newFakeRemote()
	e := newEngine(t, Options{Role: role.Falcon, Difficulty: role.Extreme}, remote)

	e.OnPositionUpdate(coord(3, 4))
	require.NoError(t, e.PushSelf(context.Background()))

	calls := remote.putCalls()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].record.Difficulty)
	assert.Equal(t, role.Extreme, *calls[0].record.Difficulty)
}

func TestEngine_SystemToggleDoesNotHighlight(t *testing.T) {
	saved := prefs.NewMemory(prefs.Defaults())
	remote := newFakeRemote()
	e := newEngine(t, Options{Role: role.Hawk, Prefs: saved}, remote)

	e.OnPositionUpdate(coord(49.2827, -123.1207))
	before := *e.Snapshot().FormattedSelf
	pushesBefore := len(remote.putCalls())

	e.SetCoordinateSystem(format.SystemDMS)

	s := e.Snapshot()
	require.NotNil(t, s.FormattedSelf)
	assert.NotEqual(t, before, *s.FormattedSelf)
	assert.Equal(t, ` 49°16'57.7200" N`, s.FormattedSelf.Latitude)
	assert.Empty(t, s.Highlights)
	assert.Equal(t, format.SystemDMS, s.System)
	assert.Equal(t, pushesBefore, len(remote.putCalls()), "formatting is local only")

	p, err := saved.Load()
	require.NoError(t, err)
	assert.Equal(t, format.SystemDMS, p.System)
}

func TestEngine_SystemToggleClearsPendingHighlights(t *testing.T) {
	e := newEngine(t, Options{Role: role.Hawk, HighlightTTL: time.Hour}, newFakeRemote())

	e.OnPositionUpdate(coord(49.2827, -123.1207))
	e.OnPositionUpdate(coord(49.2828, -123.1208))
	require.NotEmpty(t, e.Snapshot().Highlights)

	e.SetCoordinateSystem(format.SystemDMS)
	assert.Empty(t, e.Snapshot().Highlights)
}

func TestEngine_DerivedByDifficulty(t *testing.T) {
	tests := []struct {
		difficulty role.Difficulty
		hidden     bool
		distance   bool
		bearing    bool
		areaLen    int
	}{
		{role.Extreme, true, false, false, 0},
		{role.Hard, false, true, false, 0},
		{role.Medium, false, true, true, 6},
		{role.Easy, false, true, true, 8},
	}

	for _, tt := range tests {
		t.Run(tt.difficulty.String(), func(t *testing.T) {
			remote := newFakeRemote()
			require.NoError(t, remote.Memory.Put(context.Background(), role.Bluebird, store.Record{Latitude: 0.001, Longitude: 0}))

			e := newEngine(t, Options{Role: role.Hawk, Difficulty: tt.difficulty}, remote)
			e.OnPositionUpdate(coord(0, 0))
			e.PollOpponent(context.Background())

			d := e.ComputeDerived()
			assert.True(t, d.Known)
			assert.Equal(t, tt.hidden, d.Hidden)
			assert.Equal(t, tt.distance, d.DistanceMeters != nil)
			assert.Equal(t, tt.bearing, d.Bearing != nil)
			assert.Len(t, d.OpponentArea, tt.areaLen)
			if tt.areaLen > 0 {
				assert.True(t, location.AreaContains(d.OpponentArea, coord(0.001, 0)))
				require.NotNil(t, d.OpponentAreaCenter)
			}

			if tt.distance {
				assert.InDelta(t, 111.19, *d.DistanceMeters, 0.1)
				assert.Equal(t, location.ProximityNearby, d.Proximity)
			}
			if tt.bearing {
				assert.Equal(t, location.ArrowNorth, *d.Bearing)
			}
		})
	}
}

func TestEngine_DistanceHighlight(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()
	require.NoError(t, remote.Memory.Put(ctx, role.Bluebird, store.Record{Latitude: 0.001, Longitude: 0}))

	e := newEngine(t, Options{Role: role.Hawk, Difficulty: role.Hard, HighlightTTL: time.Hour}, remote)
	e.OnPositionUpdate(coord(0, 0))
	e.PollOpponent(ctx)
	_, ok := e.Snapshot().Highlights[highlight.Distance]
	assert.False(t, ok, "first known distance is not highlighted")

	require.NoError(t, remote.Memory.Put(ctx, role.Bluebird, store.Record{Latitude: 0.002, Longitude: 0}))
	e.PollOpponent(ctx)

	s := e.Snapshot()
	assert.Equal(t, []int{0, 1, 2}, s.Highlights[highlight.Distance])
	assert.Equal(t, []int{7}, s.Highlights[highlight.OpponentLatitude])
}

func TestEngine_AdoptedDifficultyKeepsHighlights(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()
	require.NoError(t, remote.Memory.Put(ctx, role.Hawk, store.Record{Latitude: 0.001, Longitude: 0}))

	e := newEngine(t, Options{Role: role.Bluebird, Difficulty: role.Medium, HighlightTTL: time.Hour}, remote)
	e.OnPositionUpdate(coord(0, 0))
	e.PollOpponent(ctx)
	require.NoError(t, remote.Memory.Put(ctx, role.Hawk, store.Record{Latitude: 0.002, Longitude: 0}))
	e.PollOpponent(ctx)
	require.Equal(t, []int{7}, e.Snapshot().Highlights[highlight.OpponentLatitude])

	hard := role.Hard
	require.NoError(t, remote.Memory.Put(ctx, role.Hawk, store.Record{Latitude: 0.002, Longitude: 0, Difficulty: &hard}))
	e.PollOpponent(ctx)

	s := e.Snapshot()
	assert.Equal(t, role.Hard, s.Difficulty)
	assert.Equal(t, []int{7}, s.Highlights[highlight.OpponentLatitude])
	assert.Equal(t, []int{0, 1, 2}, s.Highlights[highlight.Distance])
}

func TestEngine_DistanceHighlightHiddenAtExtreme(t *testing.T) {
	remote := newFakeRemote()
	ctx := context.Background()
	require.NoError(t, remote.Memory.Put(ctx, role.Bluebird, store.Record{Latitude: 0.001, Longitude: 0}))

	e := newEngine(t, Options{Role: role.Hawk, Difficulty: role.Extreme, HighlightTTL: time.Hour}, remote)
	e.OnPositionUpdate(coord(0, 0))
	e.PollOpponent(ctx)
	require.NoError(t, remote.Memory.Put(ctx, role.Bluebird, store.Record{Latitude: 0.002, Longitude: 0}))
	e.PollOpponent(ctx)

	_, ok := e.Snapshot().Highlights[highlight.Distance]
	assert.False(t, ok)
}

func TestEngine_SetDifficultySavesAndPushesImmediately(t *testing.T) {
	remote := newFakeRemote()
	saved := prefs.NewMemory(prefs.Defaults())
	e := newEngine(t, Options{
		Role:         role.Hawk,
		Difficulty:   role.Medium,
		PushInterval: time.Hour,
		PollInterval: time.Hour,
		Prefs:        saved,
	}, remote)

	e.OnPositionUpdate(coord(1, 2))
	e.Start(context.Background())

	require.Eventually(t, func() bool {
		return len(remote.putCalls()) >= 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, e.SetDifficulty(role.Easy))

	require.Eventually(t, func() bool {
		calls := remote.putCalls()
		last := calls[len(calls)-1].record
		return last.Difficulty != nil && *last.Difficulty == role.Easy
	}, time.Second, 5*time.Millisecond, "push does not wait for the next tick")

	p, err := saved.Load()
	require.NoError(t, err)
	assert.Equal(t, role.Easy, p.Difficulty)
	require.NotNil(t, p.Role)
	assert.Equal(t, role.Hawk, *p.Role)
}

func TestEngine_PushesLatestFix(t *testing.T) {
	remote := newFakeRemote()
	e := newEngine(t, Options{Role: role.Bluebird, PushInterval: time.Hour, PollInterval: time.Hour}, remote)
	e.Start(context.Background())

	for i := range 20 {
		e.OnPositionUpdate(coord(float64(i), 0))
	}

	require.Eventually(t, func() bool {
		calls := remote.putCalls()
		return len(calls) > 0 && calls[len(calls)-1].record.Latitude == 19
	}, time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, len(remote.putCalls()), 20)
}

func TestEngine_ReadOnlyNeverPushes(t *testing.T) {
	remote := newFakeRemote()
	e := newEngine(t, Options{Role: role.Hawk, ReadOnly: true, PushInterval: 10 * time.Millisecond}, remote)
	e.Start(context.Background())

	e.OnPositionUpdate(coord(1, 1))
	require.NoError(t, e.SetDifficulty(role.Hard))
	require.NoError(t, e.PushSelf(context.Background()))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, remote.putCalls())
	assert.True(t, e.Snapshot().ReadOnly)
}

func TestEngine_StartWatchesSourceAndPolls(t *testing.T) {
	remote := newFakeRemote()
	require.NoError(t, remote.Memory.Put(context.Background(), role.Starling, store.Record{Latitude: 5, Longitude: 5}))

	feed := position.NewFeed()
	var mu sync.Mutex
	var snapshots []Snapshot
	e, err := New(Options{
		Role:         role.Falcon,
		PushInterval: time.Hour,
		PollInterval: time.Hour,
		OnChange: func(s Snapshot) {
			mu.Lock()
			snapshots = append(snapshots, s)
			mu.Unlock()
		},
	}, remote, feed, logger.NewNop())
	require.NoError(t, err)
	e.Start(context.Background())
	defer e.Stop()

	feed.Push(coord(5, 5.001))
	feed.Fail(position.ErrPermissionDenied)

	require.Eventually(t, func() bool {
		s := e.Snapshot()
		return s.Self != nil && s.OpponentCoordinate != nil && s.PositionError != nil
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, e.Snapshot().PositionError, apperrors.ErrPermissionDenied)
	assert.True(t, e.ComputeDerived().Known)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, snapshots)
}

func TestEngine_StopIsFinal(t *testing.T) {
	remote := newFakeRemote()
	feed := position.NewFeed()
	e, err := New(Options{
		Role:         role.Hawk,
		Difficulty:   role.Medium,
		PushInterval: 5 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	}, remote, feed, logger.NewNop())
	require.NoError(t, err)

	e.Start(context.Background())
	e.OnPositionUpdate(coord(1, 1))
	e.Stop()

	pushes := len(remote.putCalls())
	e.OnPositionUpdate(coord(2, 2))
	feed.Push(coord(3, 3))
	e.SetCoordinateSystem(format.SystemDMS)
	require.NoError(t, e.SetDifficulty(role.Easy))
	time.Sleep(30 * time.Millisecond)

	s := e.Snapshot()
	require.NotNil(t, s.Self)
	assert.Equal(t, 1.0, s.Self.Latitude)
	assert.Equal(t, format.SystemDecimal, s.System)
	assert.Equal(t, role.Medium, s.Difficulty)
	assert.Equal(t, pushes, len(remote.putCalls()))

	e.Stop()
	e.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, pushes, len(remote.putCalls()), "a stopped engine cannot be restarted")
}

func TestEngine_StopWaitsForCallback(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	e, err := New(Options{
		Role:         role.Hawk,
		Difficulty:   role.Medium,
		PushInterval: time.Hour,
		PollInterval: time.Hour,
		ReadOnly:     true,
		OnChange: func(Snapshot) {
			mu.Lock()
			calls++
			mu.Unlock()
			select {
			case entered <- struct{}{}:
			default:
			}
			<-release
		},
	}, newFakeRemote(), nil, logger.NewNop())
	require.NoError(t, err)

	go e.OnPositionUpdate(coord(1, 1))
	<-entered

	stopped := make(chan struct{})
	go func() {
		e.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a callback was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-stopped

	mu.Lock()
	before := calls
	mu.Unlock()
	e.OnPositionUpdate(coord(2, 2))
	e.SetCoordinateSystem(format.SystemDMS)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, before, calls)
}

func TestEngine_PollErrorsAreSwallowed(t *testing.T) {
	remote := newFakeRemote()
	remote.failGets(errors.New("connection refused"))
	e := newEngine(t, Options{Role: role.Bluebird}, remote)

	assert.NotPanics(t, func() { e.PollOpponent(context.Background()) })
	assert.Nil(t, e.Snapshot().OpponentCoordinate)
}
