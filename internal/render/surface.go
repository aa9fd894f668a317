// Package render provides the drawing surface the editors paint on.
package render

import (
	"image/color"

	"github.com/enixma/dashboard/pkg/core"
)

var (
	// Accent is the stroke colour of every overlay shape.
	Accent = color.RGBA{R: 0x00, G: 0xfe, B: 0xfc, A: 0xff}
	// RegionFill is the translucent fill of regions of interest.
	RegionFill = color.NRGBA{R: 0x00, G: 0xfe, B: 0xfc, A: 0x1a}
)

// StrokeWidth is the line width used for outlines, lines and handles.
const StrokeWidth = 3.0

// Surface is an immediate-mode 2D drawing target.
type Surface interface {
	Clear()
	FillPolygon(pts []core.Point, c color.Color)
	StrokePath(pts []core.Point, closed bool, width float64, c color.Color)
	StrokeCircle(center core.Point, radius, width float64, c color.Color)
}

// Handle draws the standard vertex marker: an inner ring and an outer ring
// of radius 10.
func Handle(s Surface, p core.Point, inner float64) {
	s.StrokeCircle(p, inner, StrokeWidth, Accent)
	s.StrokeCircle(p, 10, StrokeWidth, Accent)
}

// Highlight circles the vertex under the pointer.
func Highlight(s Surface, p core.Point) {
	s.StrokeCircle(p, 10, StrokeWidth, Accent)
}
