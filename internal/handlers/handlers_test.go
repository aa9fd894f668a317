package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/enixma/dashboard/internal/crossline"
	"github.com/enixma/dashboard/internal/dispatcher"
	"github.com/enixma/dashboard/internal/interaction"
	"github.com/enixma/dashboard/internal/logging"
	"github.com/enixma/dashboard/internal/polygon"
	"github.com/enixma/dashboard/internal/render"
	"github.com/enixma/dashboard/internal/scene"
	"github.com/enixma/dashboard/internal/stats"
	"github.com/enixma/dashboard/pkg/core"
	"github.com/enixma/dashboard/pkg/streaming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commit struct {
	Name   string
	Method core.Method
}

type recordingSync struct {
	mu      sync.Mutex
	commits []commit
}

func (r *recordingSync) Commit(name string, _ any, method core.Method) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, commit{Name: name, Method: method})
}

func (r *recordingSync) all() []commit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]commit(nil), r.commits...)
}

type fakeStats struct{ calls int }

func (f *fakeStats) Snapshot(_ context.Context, pcu bool) stats.Snapshot {
	f.calls++
	return stats.Snapshot{
		At:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PCU:    pcu,
		Series: map[stats.Chart]stats.Series{stats.AverageSpeed: stats.AverageSpeed.Default()},
	}
}

type recordingPublisher struct {
	mu    sync.Mutex
	snaps []stats.Snapshot
}

func (p *recordingPublisher) PublishStats(s stats.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, s)
}

func (p *recordingPublisher) Enqueue(s stats.Snapshot) { p.PublishStats(s) }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snaps)
}

type fixture struct {
	loop       *scene.Loop
	dispatcher *dispatcher.Dispatcher
	service    *Service
	sync       *recordingSync
	lanes      *scene.Lanes
	areas      []*polygon.Editor
	lines      []*crossline.Editor
	stats      *fakeStats
	published  *recordingPublisher
	exported   *recordingPublisher
	cancel     context.CancelFunc
	done       chan struct{}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sync:      &recordingSync{},
		lanes:     scene.NewLanes(nil),
		stats:     &fakeStats{},
		published: &recordingPublisher{},
		exported:  &recordingPublisher{},
		done:      make(chan struct{}),
	}
	token := interaction.NewToken()
	panels := scene.NewPanels()
	for _, name := range []string{"first", "second"} {
		f.lines = append(f.lines, crossline.New(name, name+"Crossline", crossline.Dependencies{
			Token: token, Sync: f.sync, Lanes: f.lanes, Notify: panels,
		}))
	}
	for _, name := range []string{"first", "second"} {
		f.areas = append(f.areas, polygon.New(name, name+"Poly", polygon.Dependencies{
			Token: token, Sync: f.sync, Probe: crossline.Probe(f.lines), Notify: panels,
		}))
	}
	sc := scene.New(token,
		[]scene.Region{{Editor: f.areas[0], StartX: 20}, {Editor: f.areas[1], StartX: 527}},
		[]scene.Line{{Editor: f.lines[0], StartX: 80}, {Editor: f.lines[1], StartX: 587}},
		nil)
	f.loop = scene.NewLoop(sc, &render.Recorder{}, scene.WithRefreshRate(1000))

	d, err := dispatcher.New(logging.NewDispatcherLogger(slog.Default()))
	require.NoError(t, err)
	f.dispatcher = d

	f.service = NewService(Dependencies{
		Loop:      f.loop,
		Lanes:     f.lanes,
		Stats:     f.stats,
		Publisher: f.published,
		Exporter:  f.exported,
		PCU:       true,
		Timeout:   time.Second,
	})
	f.service.RegisterHandlers(d)

	var ctx context.Context
	ctx, f.cancel = context.WithCancel(context.Background())
	go func() {
		defer close(f.done)
		_ = f.loop.Run(ctx)
	}()
	t.Cleanup(func() {
		f.stop()
		d.Close()
	})
	return f
}

func (f *fixture) stop() {
	f.cancel()
	<-f.done
}

func (f *fixture) dispatch(t *testing.T, command string, payload any) (any, error) {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	return f.dispatcher.Dispatch(dispatcher.Event{Command: command, Session: "test", Payload: raw})
}

// step feeds one pointer sample and runs a tick right after it.
func (f *fixture) step(t *testing.T, kind core.PointerKind, x, y float64) {
	t.Helper()
	_, err := f.dispatch(t, streaming.TypePointer, streaming.PointerPayload{Kind: kind, X: x, Y: y})
	require.NoError(t, err)
	require.NoError(t, f.loop.Do(context.Background(), func(*scene.Scene) { f.loop.Tick() }))
}

func (f *fixture) snapshot(t *testing.T) scene.Snapshot {
	t.Helper()
	res, err := f.dispatch(t, streaming.TypeSnapshotRequest, nil)
	require.NoError(t, err)
	snap, ok := res.(scene.Snapshot)
	require.True(t, ok)
	return snap
}

// trySnapshot is safe to call from an Eventually condition.
func (f *fixture) trySnapshot() scene.Snapshot {
	res, err := f.dispatcher.Dispatch(dispatcher.Event{Command: streaming.TypeSnapshotRequest})
	if err != nil {
		return scene.Snapshot{}
	}
	snap, _ := res.(scene.Snapshot)
	return snap
}

func (f *fixture) regionPoints(i int) int {
	snap := f.trySnapshot()
	if i >= len(snap.Regions) {
		return 0
	}
	return len(snap.Regions[i].Points)
}

func TestRegisterHandlers(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{
		"area.add", "area.delete", "area.reset",
		"crossline.add", "crossline.delete", "crossline.direction", "crossline.reset",
		"lanes", "pointer", "snapshot", "stats.refresh",
	}, f.dispatcher.Commands())
}

func TestRegisterHandlers_WithoutStats(t *testing.T) {
	d, err := dispatcher.New(logging.NewDispatcherLogger(slog.Default()))
	require.NoError(t, err)
	NewService(Dependencies{}).RegisterHandlers(d)
	assert.False(t, d.HasHandler(streaming.TypeStatsRefresh))
}

func TestAreaAdd_CreatesDefault(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatch(t, streaming.TypeAreaAdd, streaming.TargetPayload{Name: "first"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f.regionPoints(0) == 8
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, f.sync.all(), commit{Name: "firstPoly", Method: core.MethodCreate})
}

func TestAreaAdd_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatch(t, streaming.TypeAreaAdd, streaming.TargetPayload{})
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = f.dispatch(t, streaming.TypeAreaAdd, streaming.TargetPayload{Name: "third"})
	assert.ErrorIs(t, err, scene.ErrUnknownEditor)

	_, err = f.dispatcher.Dispatch(dispatcher.Event{Command: streaming.TypeAreaAdd, Payload: json.RawMessage(`{`)})
	assert.Error(t, err)
}

func TestPointer_DragsRegion(t *testing.T) {
	f := newFixture(t)
	_, err := f.dispatch(t, streaming.TypeAreaAdd, streaming.TargetPayload{Name: "first"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return f.regionPoints(0) == 8
	}, time.Second, 5*time.Millisecond)

	f.step(t, core.PointerMove, 200, 200)
	f.step(t, core.PointerDown, 200, 200)
	f.step(t, core.PointerMove, 210, 215)
	f.step(t, core.PointerUp, 210, 215)

	pts := f.snapshot(t).Regions[0].Points
	assert.Equal(t, core.Point{X: 30, Y: 35}, pts[0])

	commits := f.sync.all()
	assert.Equal(t, commit{Name: "firstPoly", Method: core.MethodUpdate}, commits[len(commits)-1])
}

func TestPointer_InvalidKind(t *testing.T) {
	f := newFixture(t)
	_, err := f.dispatch(t, streaming.TypePointer, map[string]any{"kind": "wheel", "x": 1, "y": 1})
	assert.ErrorIs(t, err, ErrInvalidPointer)
}

func TestLanes_ShapeNextDefault(t *testing.T) {
	f := newFixture(t)

	res, err := f.dispatch(t, streaming.TypeLanes, streaming.LanesPayload{Name: "first", Value: "3"})
	require.NoError(t, err)
	assert.Equal(t, 3, res)

	res, err = f.dispatch(t, streaming.TypeLanes, streaming.LanesPayload{Name: "second", Value: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 1, res)

	_, err = f.dispatch(t, streaming.TypeCrosslineAdd, streaming.TargetPayload{Name: "first"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap := f.trySnapshot()
		return len(snap.Crosslines) > 0 && snap.Crosslines[0].Lanes == 3
	}, time.Second, 5*time.Millisecond)
}

func TestLanes_MissingName(t *testing.T) {
	f := newFixture(t)
	_, err := f.dispatch(t, streaming.TypeLanes, streaming.LanesPayload{Value: "2"})
	assert.ErrorIs(t, err, ErrMissingName)
}

func TestCrosslineDirection(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.snapshot(t).Crosslines[0].Direction)

	_, err := f.dispatch(t, streaming.TypeCrosslineDirection, streaming.TargetPayload{Name: "first"})
	require.NoError(t, err)

	assert.False(t, f.snapshot(t).Crosslines[0].Direction)
	assert.Contains(t, f.sync.all(), commit{Name: "firstCrossline", Method: core.MethodUpdate})
}

func TestCrosslineDelete(t *testing.T) {
	f := newFixture(t)
	_, err := f.dispatch(t, streaming.TypeCrosslineDelete, streaming.TargetPayload{Name: "second"})
	require.NoError(t, err)
	assert.Contains(t, f.sync.all(), commit{Name: "secondCrossline", Method: core.MethodDelete})
}

func TestStatsRefresh(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatch(t, streaming.TypeStatsRefresh, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f.published.count() == 1 && f.exported.count() == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, f.published.snaps[0].PCU)
}

func TestRefreshStats_Direct(t *testing.T) {
	f := newFixture(t)
	snap := f.service.RefreshStats(context.Background())
	assert.Contains(t, snap.Series, stats.AverageSpeed)
	assert.Equal(t, 1, f.published.count())
}

func TestCommandAfterStop(t *testing.T) {
	f := newFixture(t)
	f.stop()

	_, err := f.dispatch(t, streaming.TypeAreaReset, streaming.TargetPayload{Name: "first"})
	assert.ErrorIs(t, err, scene.ErrStopped)
}
