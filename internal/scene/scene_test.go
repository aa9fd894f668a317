package scene

import (
	"encoding/json"
	"testing"

	"github.com/enixma/dashboard/internal/crossline"
	"github.com/enixma/dashboard/internal/interaction"
	"github.com/enixma/dashboard/internal/polygon"
	"github.com/enixma/dashboard/internal/render"
	"github.com/enixma/dashboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commit struct {
	Name    string
	Payload any
	Method  core.Method
}

type recordingSync struct {
	commits []commit
}

func (r *recordingSync) Commit(name string, payload any, method core.Method) {
	r.commits = append(r.commits, commit{Name: name, Payload: payload, Method: method})
}

func (r *recordingSync) last() commit {
	return r.commits[len(r.commits)-1]
}

type fixture struct {
	scene  *Scene
	token  *interaction.Token
	sync   *recordingSync
	panels *Panels
	lanes  *Lanes
	areas  []*polygon.Editor
	lines  []*crossline.Editor
	surf   *render.Recorder
}

func newFixture() *fixture {
	f := &fixture{
		token:  interaction.NewToken(),
		sync:   &recordingSync{},
		panels: NewPanels(),
		lanes:  NewLanes(nil),
		surf:   &render.Recorder{},
	}
	for _, name := range []string{"first", "second"} {
		f.lines = append(f.lines, crossline.New(name, name+"Crossline", crossline.Dependencies{
			Token:  f.token,
			Sync:   f.sync,
			Lanes:  f.lanes,
			Notify: f.panels,
		}))
	}
	probe := crossline.Probe(f.lines)
	for _, name := range []string{"first", "second"} {
		f.areas = append(f.areas, polygon.New(name, name+"Poly", polygon.Dependencies{
			Token:  f.token,
			Sync:   f.sync,
			Probe:  probe,
			Notify: f.panels,
		}))
	}
	f.scene = New(f.token,
		[]Region{{Editor: f.areas[0], StartX: 20}, {Editor: f.areas[1], StartX: 527}},
		[]Line{{Editor: f.lines[0], StartX: 80}, {Editor: f.lines[1], StartX: 587}},
		nil)
	return f
}

func (f *fixture) tick() core.Cursor {
	f.surf.Reset()
	return f.scene.Tick(f.surf)
}

func (f *fixture) pointer(kind core.PointerKind, x, y float64) core.Cursor {
	f.scene.Pointer(core.PointerEvent{Kind: kind, X: x, Y: y})
	return f.tick()
}

var firstOctagon = core.Polygon{
	{X: 20, Y: 20}, {X: 259, Y: 20}, {X: 497, Y: 20}, {X: 497, Y: 384},
	{X: 497, Y: 748}, {X: 259, Y: 748}, {X: 20, Y: 748}, {X: 20, Y: 384},
}

func TestTick_DefaultAreaIsGeneratedAndCommitted(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.AddArea("first"))
	assert.Empty(t, f.sync.commits, "nothing happens before the tick")

	f.tick()

	require.Len(t, f.sync.commits, 1)
	assert.Equal(t, commit{Name: "firstPoly", Payload: firstOctagon, Method: core.MethodCreate}, f.sync.commits[0])
	assert.False(t, f.areas[0].Default())
	assert.Equal(t, firstOctagon, f.areas[0].Points())

	f.tick()
	assert.Len(t, f.sync.commits, 1, "default is served once")
}

func TestTick_DefaultReleasesButton(t *testing.T) {
	f := newFixture()
	f.scene.Pointer(core.PointerEvent{Kind: core.PointerDown, X: 300, Y: 300})
	require.NoError(t, f.scene.AddArea("first"))

	f.tick()
	assert.False(t, f.scene.PointerState().Button)
	assert.False(t, f.areas[0].Dragging())

	f.pointer(core.PointerMove, 320, 320)
	assert.False(t, f.areas[0].Dragging(), "button stays up until the next press")
	assert.Equal(t, firstOctagon, f.areas[0].Points())
}

func TestTick_DefaultCrosslineUsesLaneCount(t *testing.T) {
	f := newFixture()
	f.lanes.Set("first", 3)
	require.NoError(t, f.scene.AddCrossline("first"))

	f.tick()

	want := core.Crossline{
		Points:    []core.Point{{X: 80, Y: 384}, {X: 199, Y: 384}, {X: 318, Y: 384}, {X: 437, Y: 384}},
		Direction: true,
	}
	require.Len(t, f.sync.commits, 1)
	assert.Equal(t, commit{Name: "firstCrossline", Payload: want, Method: core.MethodCreate}, f.sync.commits[0])
	assert.Contains(t, f.panels.All(), Panel{Kind: PanelCrossline, Name: "first", Present: true, Lanes: 3})
}

func TestTick_CrosslineWinsOverlappingPress(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.AddArea("first"))
	require.NoError(t, f.scene.AddCrossline("first"))
	f.tick()
	require.True(t, f.areas[0].Contains(core.Point{X: 80, Y: 384}))
	commits := len(f.sync.commits)

	cursor := f.pointer(core.PointerDown, 80, 384)
	assert.Equal(t, core.CursorPointer, cursor)
	assert.True(t, f.lines[0].Dragging())
	assert.False(t, f.areas[0].Dragging())
	assert.True(t, f.token.IsOwnedBy(interaction.Crossline))

	f.pointer(core.PointerMove, 100, 400)
	assert.Equal(t, firstOctagon, f.areas[0].Points(), "region must not translate")
	assert.False(t, f.areas[0].Dragging())
	assert.Equal(t, core.Point{X: 100, Y: 400}, f.lines[0].Line().Points[0])

	f.pointer(core.PointerUp, 100, 400)
	assert.False(t, f.lines[0].Dragging())
	assert.Equal(t, interaction.None, f.token.Owner())
	require.Len(t, f.sync.commits, commits+1)
	assert.Equal(t, "firstCrossline", f.sync.last().Name)
	assert.Equal(t, core.MethodUpdate, f.sync.last().Method)
}

func TestTick_RegionDrag(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.AddArea("first"))
	f.tick()

	assert.Equal(t, core.CursorMove, f.pointer(core.PointerMove, 300, 600))
	assert.Equal(t, core.CursorGrabbing, f.pointer(core.PointerDown, 300, 600))
	f.pointer(core.PointerMove, 310, 590)
	f.pointer(core.PointerUp, 310, 590)

	assert.Equal(t, core.Point{X: 30, Y: 10}, f.areas[0].Points()[0])
	assert.Equal(t, core.MethodUpdate, f.sync.last().Method)
}

func TestTick_HoverCursor(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.AddArea("first"))
	require.NoError(t, f.scene.AddCrossline("first"))
	f.tick()

	assert.Equal(t, core.CursorMove, f.pointer(core.PointerMove, 300, 600))
	assert.Equal(t, core.CursorGrab, f.pointer(core.PointerMove, 300, 384))
	assert.Equal(t, core.CursorPointer, f.pointer(core.PointerMove, 21, 21))
	assert.Equal(t, core.CursorDefault, f.pointer(core.PointerMove, 900, 100))
	assert.Equal(t, core.CursorDefault, f.scene.Cursor())
}

func TestTick_DrawsEveryEditor(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.AddArea("first"))
	require.NoError(t, f.scene.AddCrossline("second"))
	f.tick()

	assert.Equal(t, 1, f.surf.Count(render.OpClear))
	assert.Equal(t, 1, f.surf.Count(render.OpFill))
	assert.Equal(t, 2*8+2*2, f.surf.Count(render.OpCircle))

	f.pointer(core.PointerMove, 20, 20)
	assert.Equal(t, 2*8+2*2+1, f.surf.Count(render.OpCircle), "active vertex is highlighted")
}

func TestDeleteArea_FirstCascades(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.AddArea("first"))
	require.NoError(t, f.scene.AddArea("second"))
	f.tick()
	f.sync.commits = nil

	require.NoError(t, f.scene.DeleteArea("first"))

	require.Len(t, f.sync.commits, 2)
	assert.Equal(t, commit{Name: "firstPoly", Payload: core.Polygon{}, Method: core.MethodDelete}, f.sync.commits[0])
	assert.Equal(t, commit{Name: "secondPoly", Payload: core.Polygon{}, Method: core.MethodDelete}, f.sync.commits[1])
	assert.True(t, f.areas[1].Empty())
	assert.Equal(t, []Panel{
		{Kind: PanelArea, Name: "first"},
		{Kind: PanelArea, Name: "second"},
	}, f.panels.All())
}

func TestDeleteArea_SecondStandsAlone(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.AddArea("first"))
	require.NoError(t, f.scene.AddArea("second"))
	f.tick()
	f.sync.commits = nil

	require.NoError(t, f.scene.DeleteArea("second"))
	require.Len(t, f.sync.commits, 1)
	assert.False(t, f.areas[0].Empty())
}

func TestDeleteCrossline_SkipsEmptySecond(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.AddCrossline("first"))
	f.tick()
	f.sync.commits = nil

	require.NoError(t, f.scene.DeleteCrossline("first"))
	require.Len(t, f.sync.commits, 1)
	assert.Equal(t, "firstCrossline", f.sync.commits[0].Name)
	assert.Equal(t, core.MethodDelete, f.sync.commits[0].Method)
}

func TestResetCrossline(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.AddCrossline("first"))
	f.tick()
	f.pointer(core.PointerDown, 80, 384)
	f.pointer(core.PointerMove, 90, 300)
	f.pointer(core.PointerUp, 90, 300)

	require.NoError(t, f.scene.ResetCrossline("first"))
	assert.True(t, f.lines[0].Empty())
	f.tick()
	assert.Equal(t, core.Point{X: 80, Y: 384}, f.lines[0].Line().Points[0])
}

func TestToggleDirection(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.AddCrossline("first"))
	f.tick()

	require.NoError(t, f.scene.ToggleDirection("first"))
	assert.Equal(t, commit{
		Name:    "firstCrossline",
		Payload: core.Crossline{Points: []core.Point{{X: 80, Y: 384}, {X: 437, Y: 384}}, Direction: false},
		Method:  core.MethodUpdate,
	}, f.sync.last())
}

func TestUnknownEditor(t *testing.T) {
	f := newFixture()
	assert.ErrorIs(t, f.scene.AddArea("third"), ErrUnknownEditor)
	assert.ErrorIs(t, f.scene.DeleteArea("third"), ErrUnknownEditor)
	assert.ErrorIs(t, f.scene.ResetCrossline("third"), ErrUnknownEditor)
	assert.ErrorIs(t, f.scene.ToggleDirection("third"), ErrUnknownEditor)
	assert.Empty(t, f.sync.commits)
}

func TestSnapshot(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.AddArea("first"))
	require.NoError(t, f.scene.AddCrossline("first"))
	f.tick()

	snap := f.scene.Snapshot()
	require.Len(t, snap.Regions, 2)
	require.Len(t, snap.Crosslines, 2)
	assert.Equal(t, firstOctagon, snap.Regions[0].Points)
	assert.True(t, snap.Regions[0].Shape.Valid)
	assert.Contains(t, snap.Regions[0].Shape.WKT, "POLYGON")
	assert.Empty(t, snap.Regions[1].Points)
	assert.Equal(t, 1, snap.Crosslines[0].Lanes)
	assert.True(t, snap.Crosslines[0].Direction)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"crosslines":[{"name":"first"`)
	assert.Contains(t, string(data), `"points":[]`)
}
