// Package crossline implements the directional count-line editor.
package crossline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/enixma/dashboard/internal/api"
	"github.com/enixma/dashboard/internal/geo"
	"github.com/enixma/dashboard/internal/interaction"
	"github.com/enixma/dashboard/internal/render"
	"github.com/enixma/dashboard/pkg/core"
)

// Default line geometry, in frame pixels.
const (
	DefaultWidth = 357.0
	DefaultY     = 384.0
)

// LaneSource supplies the configured lane count for an editor. ok is false
// when no count is configured.
type LaneSource interface {
	Lanes(name string) (n int, ok bool)
}

// Notifier is told whether the line exists after each commit, along with
// the number of lanes it spans.
type Notifier interface {
	CrosslinePresence(name string, present bool, lanes int)
}

// Dependencies holds the collaborators an Editor needs.
type Dependencies struct {
	Token  *interaction.Token
	Sync   api.Committer
	Lanes  LaneSource
	Notify Notifier
	Logger *slog.Logger
}

type state uint8

const (
	stateIdle state = iota
	stateDraggingPoint
	stateDraggingLine
)

func (s state) String() string {
	switch s {
	case stateDraggingPoint:
		return "dragging-point"
	case stateDraggingLine:
		return "dragging-line"
	default:
		return "idle"
	}
}

// Editor owns one crossline and interprets pointer samples for it.
// It is not safe for concurrent use.
type Editor struct {
	name   string
	record string
	line   core.Crossline

	// relative holds each point's fractional x offset between the first and
	// last point. nil until the first point drag after a reset.
	relative []float64

	state   state
	active  int
	anchor  core.Point
	request interaction.Request

	deps   Dependencies
	logger *slog.Logger
}

// New creates an editor with an empty forward line.
func New(name, record string, deps Dependencies) *Editor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		name:   name,
		record: record,
		line:   core.Crossline{Points: []core.Point{}, Direction: true},
		active: -1,
		deps:   deps,
		logger: logger.With("editor", "crossline", "name", name),
	}
}

// Name returns the crossline name.
func (e *Editor) Name() string { return e.name }

// Record returns the store record name.
func (e *Editor) Record() string { return e.record }

// Reset replaces the line with an empty forward one and abandons any
// gesture without committing.
func (e *Editor) Reset() {
	e.line = core.Crossline{Points: []core.Point{}, Direction: true}
	e.relative = nil
	e.state = stateIdle
	e.active = -1
}

// SetDefault asks the dispatch loop to generate the default line.
func (e *Editor) SetDefault() { e.request.Set() }

// Default reports whether a default line is pending.
func (e *Editor) Default() bool { return e.request.Pending() }

// ClearDefault marks a pending default as served.
func (e *Editor) ClearDefault() { e.request.Clear() }

// Crosslines returns a copy of the editor's lines. Only one is ever held.
func (e *Editor) Crosslines() []core.Crossline {
	return []core.Crossline{e.line.Clone()}
}

// Line returns a copy of the current line.
func (e *Editor) Line() core.Crossline {
	return e.line.Clone()
}

// Empty reports whether the line has no points.
func (e *Editor) Empty() bool {
	return len(e.line.Points) == 0
}

// Dragging reports whether a gesture is in progress.
func (e *Editor) Dragging() bool {
	return e.state != stateIdle
}

// NearLine reports whether p is within the hit radius of the segment from
// the first to the last point.
func (e *Editor) NearLine(p core.Point) bool {
	pts := e.line.Points
	if len(pts) < 2 {
		return false
	}
	return geo.NearSegment(p, pts[0], pts[len(pts)-1], geo.HitRadius)
}

// Near reports whether p is on a vertex or on the line.
func (e *Editor) Near(p core.Point) bool {
	if _, ok := geo.NearestPoint(e.line.Points, p, geo.HitRadius); ok {
		return true
	}
	return e.NearLine(p)
}

// LaneCount returns the configured lane count, 1 when missing or invalid.
func (e *Editor) LaneCount() int {
	if e.deps.Lanes == nil {
		return 1
	}
	n, ok := e.deps.Lanes.Lanes(e.name)
	if !ok || n < 1 {
		return 1
	}
	return n
}

// SetDefaultPoints replaces the line with a horizontal one starting at
// startX, split evenly into the configured number of lanes.
func (e *Editor) SetDefaultPoints(startX float64) {
	e.Reset()

	lanes := e.LaneCount()
	end := startX + DefaultWidth
	seg := DefaultWidth / float64(lanes)

	pts := []core.Point{{X: startX, Y: DefaultY}}
	for i := 1; i < lanes; i++ {
		pts = append(pts, core.Point{X: startX + seg*float64(i), Y: DefaultY})
	}
	if pts[len(pts)-1].X != end {
		pts = append(pts, core.Point{X: end, Y: DefaultY})
	}
	for i := range pts {
		pts[i] = pts[i].Round()
	}
	e.line.Points = pts
}

// ToggleDirection flips the counting direction and commits it.
func (e *Editor) ToggleDirection() {
	e.line.Direction = !e.line.Direction
	e.logger.Debug("direction toggled", "forward", e.line.Direction)
	e.Commit(core.MethodUpdate)
}

// Update interprets one pointer sample and returns the vertex under the
// pointer or being dragged, if any.
func (e *Editor) Update(s core.PointerState) (core.Vertex, bool) {
	tok := e.deps.Token
	tok.OnPointerSample(s)
	pos := s.Position()

	if e.state == stateIdle {
		e.active = -1
		if v, ok := geo.NearestPoint(e.line.Points, pos, geo.HitRadius); ok {
			e.active = v.Index
		}

		if s.Button {
			switch {
			case e.active >= 0:
				tok.SetOwner(interaction.Crossline)
				e.state = stateDraggingPoint
				e.logger.Debug("gesture started", "state", e.state, "vertex", e.active)
				return e.activeVertex()
			case e.NearLine(pos):
				tok.SetOwner(interaction.Crossline)
				e.state = stateDraggingLine
				e.anchor = pos
				e.logger.Debug("gesture started", "state", e.state)
			}
		}
	}

	switch e.state {
	case stateDraggingLine:
		if s.Button {
			geo.Translate(e.line.Points, pos.X-e.anchor.X, pos.Y-e.anchor.Y)
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

// Commit persists the line and reports presence.
func (e *Editor) Commit(method core.Method) {
	payload := e.line.Clone()
	e.deps.Sync.Commit(e.record, payload, method)
	if e.deps.Notify != nil {
		lanes := 0
		if n := len(payload.Points); n > 0 {
			lanes = n - 1
		}
		e.deps.Notify.CrosslinePresence(e.name, len(payload.Points) > 0, lanes)
	}
}

// Load replaces the line with the stored record and writes it back in the
// current format, so a legacy bare point array is normalised in the store.
func (e *Editor) Load(ctx context.Context, f api.Fetcher) error {
	env, err := f.Fetch(ctx, e.record)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", e.record, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	var line core.Crossline
	if err := json.Unmarshal(env.Data, &line); err != nil {
		e.logger.Warn("ignoring malformed record", "record", e.record, "error", err)
		return nil
	}

	e.Reset()
	for _, p := range line.Points {
		e.line.Points = append(e.line.Points, p.Round())
	}
	e.line.Direction = line.Direction
	e.logger.Info("crossline loaded", "points", len(e.line.Points), "forward", e.line.Direction)

	if core.IsLegacyCrossline(env.Data) {
		e.logger.Info("normalising legacy record", "record", e.record)
	}
	e.Commit(core.MethodUpdate)
	return nil
}

// Draw paints the line, its vertex handles and the direction arrows.
func (e *Editor) Draw(s render.Surface) {
	pts := e.line.Points
	if len(pts) == 0 {
		return
	}
	s.StrokePath(pts, false, render.StrokeWidth, render.Accent)
	for _, p := range pts {
		render.Handle(s, p, 5)
	}
	for _, a := range Arrows(pts, e.line.Direction) {
		s.StrokePath(a[:], false, render.StrokeWidth, render.Accent)
	}
}

func (e *Editor) activeVertex() (core.Vertex, bool) {
	if e.active < 0 || e.active >= len(e.line.Points) {
		return core.Vertex{}, false
	}
	return core.Vertex{Point: e.line.Points[e.active], Index: e.active}, true
}

func (e *Editor) finish() {
	e.logger.Debug("gesture finished", "state", e.state)
	e.state = stateIdle
	e.Commit(core.MethodUpdate)
}

// dragPoint moves the active point by the per-tick delta. Endpoints move
// freely and carry the interior points along at their stored fractions.
// Interior points slide between their neighbours along the line.
func (e *Editor) dragPoint(s core.PointerState) {
	pts := e.line.Points
	n := len(pts)
	i := e.active
	if i < 0 || i >= n {
		return
	}
	dx, dy := s.Delta()

	if len(e.relative) != n {
		e.relative = relativePositions(pts)
	}

	if i == 0 || i == n-1 {
		pts[i] = pts[i].Add(dx, dy)
		if n > 2 {
			first, last := pts[0], pts[n-1]
			for k := 1; k < n-1; k++ {
				r := e.relative[k]
				pts[k] = core.Point{
					X: first.X + (last.X-first.X)*r,
					Y: first.Y + (last.Y-first.Y)*r,
				}
			}
		}
		return
	}

	prev, next := pts[i-1], pts[i+1]
	x := math.Max(math.Min(prev.X, next.X), math.Min(pts[i].X+dx, math.Max(prev.X, next.X)))

	y := (prev.Y + next.Y) / 2
	if span := next.X - prev.X; span != 0 {
		y = prev.Y + (x-prev.X)/span*(next.Y-prev.Y)
	}
	pts[i] = core.Point{X: x, Y: y}

	e.relative = relativePositions(pts)
}

// relativePositions returns each point's x offset from the first point as a
// fraction of the first-to-last width. A zero width spaces them evenly.
func relativePositions(pts []core.Point) []float64 {
	n := len(pts)
	rel := make([]float64, n)
	if n < 2 {
		return rel
	}
	first, width := pts[0].X, pts[n-1].X-pts[0].X
	for i, p := range pts {
		if width == 0 {
			rel[i] = float64(i) / float64(n-1)
			continue
		}
		rel[i] = (p.X - first) / width
	}
	return rel
}
