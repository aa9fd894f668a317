package geo

import (
	"errors"
	"math"

	"github.com/enixma/dashboard/pkg/core"
)

// HitRadius is the pixel distance within which a vertex or segment counts
// as under the pointer.
const HitRadius = 8.0

// ErrInvalidPoints is returned when a point list cannot form the requested shape
var ErrInvalidPoints = errors.New("invalid points provided")

// PointInPolygon reports whether p lies inside poly using the even-odd rule.
// An empty polygon contains nothing.
func PointInPolygon(poly []core.Point, p core.Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// DistanceToSegment returns the Euclidean distance from p to the closest
// point of segment [a,b]. A zero-length segment measures the distance to a.
func DistanceToSegment(p, a, b core.Point) float64 {
	cx, cy := b.X-a.X, b.Y-a.Y
	lenSq := cx*cx + cy*cy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}

	t := ((p.X-a.X)*cx + (p.Y-a.Y)*cy) / lenSq
	t = math.Max(0, math.Min(1, t))

	return math.Hypot(p.X-(a.X+t*cx), p.Y-(a.Y+t*cy))
}

// NearSegment reports whether p is within threshold of [a,b]. Zero-length
// segments are never near.
func NearSegment(p, a, b core.Point, threshold float64) bool {
	if a == b {
		return false
	}
	return DistanceToSegment(p, a, b) <= threshold
}

// NearestPoint returns the point of points closest to pos and strictly
// within maxDist. Ties go to the lowest index.
func NearestPoint(points []core.Point, pos core.Point, maxDist float64) (core.Vertex, bool) {
	best := maxDist * maxDist
	index := -1
	for i, pt := range points {
		dx, dy := pos.X-pt.X, pos.Y-pt.Y
		if d2 := dx*dx + dy*dy; d2 < best {
			best = d2
			index = i
		}
	}
	if index < 0 {
		return core.Vertex{}, false
	}
	return core.Vertex{Point: points[index], Index: index}, true
}

// Translate moves every point by (dx, dy) in place.
func Translate(points []core.Point, dx, dy float64) {
	for i := range points {
		points[i].X += dx
		points[i].Y += dy
	}
}
