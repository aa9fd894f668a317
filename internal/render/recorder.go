package render

import (
	"image/color"

	"github.com/enixma/dashboard/pkg/core"
)

// OpKind identifies a recorded drawing call.
type OpKind string

const (
	OpClear  OpKind = "clear"
	OpFill   OpKind = "fill"
	OpStroke OpKind = "stroke"
	OpCircle OpKind = "circle"
)

// Op is one recorded drawing call.
type Op struct {
	Kind   OpKind
	Points []core.Point
	Closed bool
	Center core.Point
	Radius float64
	Width  float64
	Color  color.Color
}

// Recorder is a Surface that remembers every call instead of drawing.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) Clear() {
	r.Ops = append(r.Ops, Op{Kind: OpClear})
}

func (r *Recorder) FillPolygon(pts []core.Point, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Points: clonePoints(pts), Closed: true, Color: c})
}

func (r *Recorder) StrokePath(pts []core.Point, closed bool, width float64, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpStroke, Points: clonePoints(pts), Closed: closed, Width: width, Color: c})
}

func (r *Recorder) StrokeCircle(center core.Point, radius, width float64, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpCircle, Center: center, Radius: radius, Width: width, Color: c})
}

// Count returns how many calls of kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

func clonePoints(pts []core.Point) []core.Point {
	out := make([]core.Point, len(pts))
	copy(out, pts)
	return out
}
