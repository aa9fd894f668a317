package geo

import (
	"encoding/json"
	"fmt"

	"github.com/enixma/dashboard/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ParsePoints decodes a JSON point list. Items may be {"x":..,"y":..}
// objects or [x,y] pairs. Coordinates are snapped to whole pixels.
func ParsePoints(data []byte) ([]core.Point, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse point list JSON: %w", err)
	}

	points := make([]core.Point, 0, len(items))
	for i, item := range items {
		var p core.Point
		if len(item) > 0 && item[0] == '[' {
			var pair []float64
			if err := json.Unmarshal(item, &pair); err != nil || len(pair) < 2 {
				return nil, fmt.Errorf("coordinate %d has insufficient values: %w", i, ErrInvalidPoints)
			}
			p = core.Point{X: pair[0], Y: pair[1]}
		} else if err := json.Unmarshal(item, &p); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		points = append(points, p.Round())
	}
	return points, nil
}

// PolygonGeometry converts a region outline into a closed geom.Polygon. The
// ring is validated unless opts say otherwise, so a self-intersecting
// outline is an error.
func PolygonGeometry(poly []core.Point, opts ...geom.ConstructorOption) (geom.Polygon, error) {
	if len(poly) < 3 {
		return geom.Polygon{}, fmt.Errorf("polygon must have at least 3 points, got %d: %w", len(poly), ErrInvalidPoints)
	}

	flat := make([]float64, 0, (len(poly)+1)*2)
	for _, p := range poly {
		flat = append(flat, p.X, p.Y)
	}
	flat = append(flat, poly[0].X, poly[0].Y)

	ring, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY), opts...)
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("failed to build ring: %w", err)
	}
	g, err := geom.NewPolygon([]geom.LineString{ring}, opts...)
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("failed to build polygon: %w", err)
	}
	return g, nil
}

// LineGeometry converts a crossline into a geom.LineString.
func LineGeometry(points []core.Point, opts ...geom.ConstructorOption) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, fmt.Errorf("line must have at least 2 points, got %d: %w", len(points), ErrInvalidPoints)
	}

	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY), opts...)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("failed to build line: %w", err)
	}
	return ls, nil
}

// Shape summarises an editor shape for snapshots.
type Shape struct {
	WKT   string `json:"wkt,omitempty"`
	Valid bool   `json:"valid"`
}

// DescribePolygon returns the WKT of poly and whether it is a simple ring.
// An outline with fewer than three points yields the zero Shape.
func DescribePolygon(poly []core.Point) Shape {
	g, err := PolygonGeometry(poly, geom.DisableAllValidations)
	if err != nil {
		return Shape{}
	}
	_, err = PolygonGeometry(poly)
	return Shape{WKT: g.AsText(), Valid: err == nil}
}

// DescribeLine returns the WKT of a crossline. Valid is false when the
// points collapse to a single position.
func DescribeLine(points []core.Point) Shape {
	g, err := LineGeometry(points, geom.DisableAllValidations)
	if err != nil {
		return Shape{}
	}
	_, err = LineGeometry(points)
	return Shape{WKT: g.AsText(), Valid: err == nil}
}
