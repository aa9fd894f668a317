// Package scene runs the pointer dispatch loop that drives every editor on
// the video overlay.
package scene

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/enixma/dashboard/internal/crossline"
	"github.com/enixma/dashboard/internal/interaction"
	"github.com/enixma/dashboard/internal/polygon"
	"github.com/enixma/dashboard/internal/render"
	"github.com/enixma/dashboard/pkg/core"
)

// ErrUnknownEditor is returned by UI operations naming no editor.
var ErrUnknownEditor = errors.New("unknown editor")

// Region places a polygon editor in the scene. StartX is where its default
// shape is generated.
type Region struct {
	Editor *polygon.Editor
	StartX float64
}

// Line places a crossline editor in the scene.
type Line struct {
	Editor *crossline.Editor
	StartX float64
}

// Scene holds the editors of one canvas and the latest pointer state.
// It is not safe for concurrent use; Loop serialises access.
type Scene struct {
	token   *interaction.Token
	regions []Region
	lines   []Line
	pointer core.PointerState
	cursor  core.Cursor
	logger  *slog.Logger
}

// New creates a scene. Regions are dispatched before lines on every tick,
// each in the order given.
func New(token *interaction.Token, regions []Region, lines []Line, logger *slog.Logger) *Scene {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scene{
		token:   token,
		regions: regions,
		lines:   lines,
		cursor:  core.CursorDefault,
		logger:  logger.With("component", "scene"),
	}
}

// Pointer records a raw pointer event. It takes effect on the next Tick.
func (s *Scene) Pointer(e core.PointerEvent) {
	s.pointer = s.pointer.Apply(e)
}

// PointerState returns the pointer as the next Tick will see it.
func (s *Scene) PointerState() core.PointerState {
	return s.pointer
}

// Cursor returns the cursor chosen by the last Tick.
func (s *Scene) Cursor() core.Cursor {
	return s.cursor
}

// Tick runs one dispatch pass: it serves pending default shapes, feeds the
// pointer to every editor, draws them onto surf and returns the cursor to
// show.
func (s *Scene) Tick(surf render.Surface) core.Cursor {
	surf.Clear()
	cursor := s.hoverCursor()

	for _, r := range s.regions {
		if r.Editor.Default() {
			r.Editor.SetDefaultPoints(r.StartX)
			r.Editor.Commit(core.MethodCreate)
			s.pointer.Button = false
			r.Editor.ClearDefault()
		}
	}
	for _, r := range s.regions {
		v, ok := r.Editor.Update(s.pointer)
		r.Editor.Draw(surf)
		if ok {
			render.Highlight(surf, v.Point)
			cursor = core.CursorPointer
		}
	}

	for _, l := range s.lines {
		if l.Editor.Default() {
			l.Editor.SetDefaultPoints(l.StartX)
			l.Editor.Commit(core.MethodCreate)
			s.pointer.Button = false
			l.Editor.ClearDefault()
		}
	}
	for _, l := range s.lines {
		v, ok := l.Editor.Update(s.pointer)
		l.Editor.Draw(surf)
		if ok {
			render.Highlight(surf, v.Point)
			cursor = core.CursorPointer
		}
	}

	s.pointer.LastX, s.pointer.LastY = s.pointer.X, s.pointer.Y
	s.cursor = cursor
	return cursor
}

func (s *Scene) hoverCursor() core.Cursor {
	pos := s.pointer.Position()
	var overRegion, overLine bool
	for _, r := range s.regions {
		overRegion = overRegion || r.Editor.Contains(pos)
	}
	for _, l := range s.lines {
		overLine = overLine || l.Editor.NearLine(pos)
	}

	cursor := core.CursorDefault
	switch {
	case s.pointer.Button && (overRegion || overLine):
		cursor = core.CursorGrabbing
	case overLine:
		cursor = core.CursorGrab
	case overRegion:
		cursor = core.CursorMove
	}
	return cursor
}

// AddArea clears the named region and requests its default shape.
func (s *Scene) AddArea(name string) error {
	r, _, err := s.region(name)
	if err != nil {
		return err
	}
	r.Editor.Reset()
	r.Editor.SetDefault()
	return nil
}

// ResetArea replaces the named region with its default shape.
func (s *Scene) ResetArea(name string) error {
	return s.AddArea(name)
}

// DeleteArea clears the named region and deletes its record. Deleting the
// first region also deletes every later region that still has points.
func (s *Scene) DeleteArea(name string) error {
	r, idx, err := s.region(name)
	if err != nil {
		return err
	}
	r.Editor.Reset()
	r.Editor.Commit(core.MethodDelete)
	if idx != 0 {
		return nil
	}
	for _, other := range s.regions[1:] {
		if !other.Editor.Empty() {
			other.Editor.Reset()
			other.Editor.Commit(core.MethodDelete)
		}
	}
	return nil
}

// AddCrossline clears the named line and requests its default shape.
func (s *Scene) AddCrossline(name string) error {
	l, _, err := s.line(name)
	if err != nil {
		return err
	}
	l.Editor.Reset()
	l.Editor.SetDefault()
	return nil
}

// ResetCrossline replaces the named line with its default shape.
func (s *Scene) ResetCrossline(name string) error {
	return s.AddCrossline(name)
}

// DeleteCrossline clears the named line and deletes its record. Deleting
// the first line also deletes every later line that still has points.
func (s *Scene) DeleteCrossline(name string) error {
	l, idx, err := s.line(name)
	if err != nil {
		return err
	}
	l.Editor.Reset()
	l.Editor.Commit(core.MethodDelete)
	if idx != 0 {
		return nil
	}
	for _, other := range s.lines[1:] {
		if !other.Editor.Empty() {
			other.Editor.Reset()
			other.Editor.Commit(core.MethodDelete)
		}
	}
	return nil
}

// ToggleDirection flips the counting direction of the named line.
func (s *Scene) ToggleDirection(name string) error {
	l, _, err := s.line(name)
	if err != nil {
		return err
	}
	l.Editor.ToggleDirection()
	return nil
}

func (s *Scene) region(name string) (Region, int, error) {
	for i, r := range s.regions {
		if r.Editor.Name() == name {
			return r, i, nil
		}
	}
	return Region{}, -1, fmt.Errorf("area %q: %w", name, ErrUnknownEditor)
}

func (s *Scene) line(name string) (Line, int, error) {
	for i, l := range s.lines {
		if l.Editor.Name() == name {
			return l, i, nil
		}
	}
	return Line{}, -1, fmt.Errorf("crossline %q: %w", name, ErrUnknownEditor)
}
