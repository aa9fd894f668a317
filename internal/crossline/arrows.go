package crossline

import (
	"math"

	"github.com/enixma/dashboard/pkg/core"
)

// ArrowSize is the half-width of a direction arrowhead.
const ArrowSize = 15.0

// Arrows returns one V-shaped arrowhead per segment, anchored at the
// segment midpoint and pointing across the line. The arrows of a reversed
// line point the other way.
func Arrows(pts []core.Point, forward bool) [][3]core.Point {
	if len(pts) < 2 {
		return nil
	}
	out := make([][3]core.Point, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		a, b := pts[i], pts[i+1]
		mid := a.Mid(b)

		dx, dy := b.X-a.X, b.Y-a.Y
		if !forward {
			dx, dy = -dx, -dy
		}
		angle := math.Atan2(dy, dx)
		cos, sin := math.Cos(angle), math.Sin(angle)

		out = append(out, [3]core.Point{
			rotate(mid, -ArrowSize, ArrowSize, cos, sin),
			rotate(mid, 0, 2*ArrowSize, cos, sin),
			rotate(mid, ArrowSize, ArrowSize, cos, sin),
		})
	}
	return out
}

func rotate(origin core.Point, x, y, cos, sin float64) core.Point {
	return core.Point{
		X: origin.X + x*cos - y*sin,
		Y: origin.Y + x*sin + y*cos,
	}
}
