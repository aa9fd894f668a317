// Package polygon implements the region-of-interest editor.
package polygon

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/enixma/dashboard/internal/api"
	"github.com/enixma/dashboard/internal/geo"
	"github.com/enixma/dashboard/internal/interaction"
	"github.com/enixma/dashboard/internal/render"
	"github.com/enixma/dashboard/pkg/core"
)

// Default octagon geometry, in frame pixels.
const (
	DefaultWidth  = 477.0
	DefaultCenter = 239.0
	DefaultTop    = 20.0
	DefaultMiddle = 384.0
	DefaultBottom = 748.0
)

// CollisionProbe reports whether a position belongs to a crossline. Regions
// yield to crosslines wherever the two overlap.
type CollisionProbe interface {
	Near(p core.Point) bool
}

// Notifier is told whether the region holds a shape after each commit.
type Notifier interface {
	AreaPresence(name string, present bool)
}

// Dependencies holds the collaborators an Editor needs.
type Dependencies struct {
	Token  *interaction.Token
	Sync   api.Committer
	Probe  CollisionProbe
	Notify Notifier
	Logger *slog.Logger
}

type state uint8

const (
	stateIdle state = iota
	stateDraggingPoint
	stateDraggingRegion
)

func (s state) String() string {
	switch s {
	case stateDraggingPoint:
		return "dragging-point"
	case stateDraggingRegion:
		return "dragging-region"
	default:
		return "idle"
	}
}

// Editor owns one region outline and interprets pointer samples for it.
// It is not safe for concurrent use.
type Editor struct {
	name   string
	record string
	points core.Polygon

	state   state
	active  int
	anchor  core.Point
	request interaction.Request

	deps   Dependencies
	logger *slog.Logger
}

// New creates an empty editor. name identifies the region in UI
// notifications; record is the store record it persists to.
func New(name, record string, deps Dependencies) *Editor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		name:   name,
		record: record,
		points: core.Polygon{},
		active: -1,
		deps:   deps,
		logger: logger.With("editor", "polygon", "name", name),
	}
}

// Name returns the region name.
func (e *Editor) Name() string { return e.name }

// Record returns the store record name.
func (e *Editor) Record() string { return e.record }

// Reset clears the outline and abandons any gesture without committing.
func (e *Editor) Reset() {
	e.points = core.Polygon{}
	e.state = stateIdle
	e.active = -1
}

// SetDefault asks the dispatch loop to generate the default shape.
func (e *Editor) SetDefault() { e.request.Set() }

// Default reports whether a default shape is pending.
func (e *Editor) Default() bool { return e.request.Pending() }

// ClearDefault marks a pending default as served.
func (e *Editor) ClearDefault() { e.request.Clear() }

// Polygons returns a copy of the editor's regions. Only one is ever held.
func (e *Editor) Polygons() []core.Polygon {
	return []core.Polygon{e.points.Clone()}
}

// Points returns a copy of the outline.
func (e *Editor) Points() core.Polygon {
	return e.points.Clone()
}

// Empty reports whether the region has no outline.
func (e *Editor) Empty() bool {
	return len(e.points) == 0
}

// Dragging reports whether a gesture is in progress.
func (e *Editor) Dragging() bool {
	return e.state != stateIdle
}

// Contains reports whether p lies inside the region.
func (e *Editor) Contains(p core.Point) bool {
	return geo.PointInPolygon(e.points, p)
}

// SetDefaultPoints appends the default octagon starting at startX.
func (e *Editor) SetDefaultPoints(startX float64) {
	mid := startX + DefaultCenter
	right := startX + DefaultWidth
	for _, p := range []core.Point{
		{X: startX, Y: DefaultTop},
		{X: mid, Y: DefaultTop},
		{X: right, Y: DefaultTop},
		{X: right, Y: DefaultMiddle},
		{X: right, Y: DefaultBottom},
		{X: mid, Y: DefaultBottom},
		{X: startX, Y: DefaultBottom},
		{X: startX, Y: DefaultMiddle},
	} {
		e.points = append(e.points, p.Round())
	}
}

// Update interprets one pointer sample and returns the vertex under the
// pointer or being dragged, if any.
func (e *Editor) Update(s core.PointerState) (core.Vertex, bool) {
	tok := e.deps.Token
	tok.OnPointerSample(s)
	pos := s.Position()

	if e.deps.Probe != nil && e.deps.Probe.Near(pos) {
		if e.abandon() && tok.IsOwnedBy(interaction.Polygon) {
			tok.ClearOwner()
		}
		return core.Vertex{}, false
	}

	if s.Button && tok.HeldByOther(interaction.Polygon) {
		e.abandon()
		return core.Vertex{}, false
	}

	if e.state == stateIdle {
		e.active = -1
		if v, ok := geo.NearestPoint(e.points, pos, geo.HitRadius); ok {
			e.active = v.Index
		}

		if s.Button {
			switch {
			case e.active >= 0:
				tok.SetOwner(interaction.Polygon)
				e.state = stateDraggingPoint
				e.splitMidpoint()
				e.logger.Debug("gesture started", "state", e.state, "vertex", e.active)
				return e.activeVertex()
			case e.Contains(pos):
				tok.SetOwner(interaction.Polygon)
				e.state = stateDraggingRegion
				e.anchor = pos
				e.logger.Debug("gesture started", "state", e.state)
			}
		}
	}

	switch e.state {
	case stateDraggingRegion:
		if s.Button {
			geo.Translate(e.points, pos.X-e.anchor.X, pos.Y-e.anchor.Y)
			e.anchor = pos
		} else {
			e.finish()
		}
	case stateDraggingPoint:
		if s.Button {
			e.dragPoint(s)
		} else {
			e.finish()
		}
	}

	return e.activeVertex()
}

// Commit persists the outline and reports presence.
func (e *Editor) Commit(method core.Method) {
	payload := e.points.Clone()
	e.deps.Sync.Commit(e.record, payload, method)
	if e.deps.Notify != nil {
		e.deps.Notify.AreaPresence(e.name, len(payload) > 0)
	}
}

// Load replaces the outline with the stored record and writes it back.
// Records that are not point arrays are treated as unset.
func (e *Editor) Load(ctx context.Context, f api.Fetcher) error {
	env, err := f.Fetch(ctx, e.record)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", e.record, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	pts, err := geo.ParsePoints(env.Data)
	if err != nil {
		e.logger.Warn("ignoring malformed record", "record", e.record, "error", err)
		return nil
	}

	e.Reset()
	e.points = pts
	e.logger.Info("region loaded", "points", len(pts))
	// Written back with the rounded points.
	e.Commit(core.MethodUpdate)
	return nil
}

// Draw paints the region and its vertex handles.
func (e *Editor) Draw(s render.Surface) {
	if len(e.points) == 0 {
		return
	}
	s.FillPolygon(e.points, render.RegionFill)
	s.StrokePath(e.points, true, render.StrokeWidth, render.Accent)
	for i, p := range e.points {
		inner := 5.0
		if i%2 == 1 {
			inner = 3
		}
		render.Handle(s, p, inner)
	}
}

func (e *Editor) activeVertex() (core.Vertex, bool) {
	if e.active < 0 || e.active >= len(e.points) {
		return core.Vertex{}, false
	}
	return core.Vertex{Point: e.points[e.active], Index: e.active}, true
}

// finish ends a gesture on release.
func (e *Editor) finish() {
	e.logger.Debug("gesture finished", "state", e.state)
	e.state = stateIdle
	e.Commit(core.MethodUpdate)
}

// abandon ends a gesture that lost priority. It reports whether one was
// in progress.
func (e *Editor) abandon() bool {
	if e.state == stateIdle {
		return false
	}
	e.logger.Debug("gesture abandoned", "state", e.state)
	e.state = stateIdle
	e.Commit(core.MethodUpdate)
	return true
}

// dragPoint moves the active vertex by the per-tick delta and keeps the
// midpoints next to a dragged corner centred between their corners.
func (e *Editor) dragPoint(s core.PointerState) {
	i := e.active
	if i < 0 || i >= len(e.points) {
		return
	}
	dx, dy := s.Delta()
	pts := e.points
	last := len(pts) - 1

	pts[i] = pts[i].Add(dx, dy)

	if last >= 2 && (i == 0 || (i%2 == 0 && i == last-1)) {
		pts[last] = pts[0].Mid(pts[last-1])
	}

	if i%2 == 0 {
		if i >= 2 {
			pts[i-1] = pts[i-2].Mid(pts[i])
		}
		if i+2 < len(pts) {
			pts[i+1] = pts[i].Mid(pts[i+2])
		}
	}
}

// splitMidpoint replaces a touched midpoint with three points so the
// touched one becomes a corner with fresh midpoints on either side.
func (e *Editor) splitMidpoint() {
	i := e.active
	if i%2 == 0 || i < 1 {
		return
	}
	p := e.points[i]
	prev := e.points[i-1]
	next := e.points[0]
	if i < len(e.points)-1 {
		next = e.points[i+1]
	}

	e.points = slices.Replace(e.points, i, i+1, prev.Mid(p), p, p.Mid(next))
	e.active = i + 1
}
