// pkg/core/geometry.go
package core

import (
	"bytes"
	"encoding/json"
	"math"
)

// Point is a pixel position in video-frame space (0..1024 x 0..768).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Round snaps p to the nearest pixel, halves rounding up.
func (p Point) Round() Point {
	return Point{X: math.Floor(p.X + 0.5), Y: math.Floor(p.Y + 0.5)}
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Mid returns the arithmetic mean of p and q.
func (p Point) Mid(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Vertex is a point together with its index in the owning shape.
type Vertex struct {
	Point Point
	Index int
}

// Polygon is an ordered region outline. Even indices are corners, odd
// indices are midpoints kept at the mean of their neighbouring corners.
type Polygon []Point

// Clone returns a copy that shares no backing array with p.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return Polygon{}
	}
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// Crossline is a directional count line. Direction true means traffic is
// counted along the point order, false means against it.
type Crossline struct {
	Points    []Point `json:"points"`
	Direction bool    `json:"direction"`
}

// Clone returns a deep copy of c.
func (c Crossline) Clone() Crossline {
	pts := make([]Point, len(c.Points))
	copy(pts, c.Points)
	return Crossline{Points: pts, Direction: c.Direction}
}

// UnmarshalJSON accepts the {points, direction} record as well as the legacy
// bare point array. A missing direction reads as forward.
func (c *Crossline) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pts []Point
		if err := json.Unmarshal(trimmed, &pts); err != nil {
			return err
		}
		c.Points = pts
		c.Direction = true
		return nil
	}

	var raw struct {
		Points    []Point `json:"points"`
		Direction *bool   `json:"direction"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	c.Points = raw.Points
	c.Direction = raw.Direction == nil || *raw.Direction
	return nil
}

// IsLegacyCrossline reports whether data is a bare point array rather than
// the {points, direction} record.
func IsLegacyCrossline(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}
