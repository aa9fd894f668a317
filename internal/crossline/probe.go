package crossline

import "github.com/enixma/dashboard/pkg/core"

// Probe answers hit tests against a set of crosslines. Region editors use it
// to yield gestures that start on a line.
type Probe []*Editor

// Near reports whether p is on any line's vertex or segment.
func (p Probe) Near(pt core.Point) bool {
	for _, e := range p {
		if e != nil && e.Near(pt) {
			return true
		}
	}
	return false
}
