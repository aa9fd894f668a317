package scene

import (
	"github.com/enixma/dashboard/internal/geo"
	"github.com/enixma/dashboard/internal/interaction"
	"github.com/enixma/dashboard/pkg/core"
)

// Snapshot is a read-only copy of the scene for publishing.
type Snapshot struct {
	Cursor     core.Cursor       `json:"cursor"`
	Owner      interaction.Owner `json:"owner,omitempty"`
	Regions    []RegionSnapshot  `json:"regions"`
	Crosslines []LineSnapshot    `json:"crosslines"`
}

// RegionSnapshot describes one region.
type RegionSnapshot struct {
	Name     string       `json:"name"`
	Points   core.Polygon `json:"points"`
	Dragging bool         `json:"dragging"`
	Shape    geo.Shape    `json:"shape"`
}

// LineSnapshot describes one crossline.
type LineSnapshot struct {
	Name      string       `json:"name"`
	Points    []core.Point `json:"points"`
	Direction bool         `json:"direction"`
	Lanes     int          `json:"lanes"`
	Dragging  bool         `json:"dragging"`
	Shape     geo.Shape    `json:"shape"`
}

// Snapshot copies the current geometry.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Cursor:     s.cursor,
		Owner:      s.token.Owner(),
		Regions:    make([]RegionSnapshot, 0, len(s.regions)),
		Crosslines: make([]LineSnapshot, 0, len(s.lines)),
	}
	for _, r := range s.regions {
		pts := r.Editor.Points()
		snap.Regions = append(snap.Regions, RegionSnapshot{
			Name:     r.Editor.Name(),
			Points:   pts,
			Dragging: r.Editor.Dragging(),
			Shape:    geo.DescribePolygon(pts),
		})
	}
	for _, l := range s.lines {
		line := l.Editor.Line()
		if line.Points == nil {
			line.Points = []core.Point{}
		}
		snap.Crosslines = append(snap.Crosslines, LineSnapshot{
			Name:      l.Editor.Name(),
			Points:    line.Points,
			Direction: line.Direction,
			Lanes:     max(len(line.Points)-1, 0),
			Dragging:  l.Editor.Dragging(),
			Shape:     geo.DescribeLine(line.Points),
		})
	}
	return snap
}
