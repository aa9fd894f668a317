package core

// PointerState is one pointer sample. LastX/LastY hold the position seen on
// the previous dispatch tick and are used for per-tick drag deltas.
type PointerState struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	LastX  float64 `json:"lx"`
	LastY  float64 `json:"ly"`
	Button bool    `json:"button"`
}

// Position returns the current pointer position.
func (s PointerState) Position() Point {
	return Point{X: s.X, Y: s.Y}
}

// Delta returns the movement since the previous tick.
func (s PointerState) Delta() (dx, dy float64) {
	return s.X - s.LastX, s.Y - s.LastY
}

// Cursor is the pointer affordance shown over the video frame.
type Cursor string

const (
	CursorDefault  Cursor = "default"
	CursorMove     Cursor = "move"
	CursorGrab     Cursor = "grab"
	CursorGrabbing Cursor = "grabbing"
	CursorPointer  Cursor = "pointer"
)

// Method is the requested store operation for a commit.
type Method string

const (
	MethodCreate Method = "POST"
	MethodUpdate Method = "PUT"
	MethodDelete Method = "DELETE"
)

// PointerKind distinguishes the raw pointer events a browser reports.
type PointerKind string

const (
	PointerDown PointerKind = "down"
	PointerUp   PointerKind = "up"
	PointerMove PointerKind = "move"
)

// PointerEvent is one raw pointer event in frame coordinates.
type PointerEvent struct {
	Kind PointerKind `json:"kind"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
}

// Apply folds e into s. Moves keep the button state; LastX/LastY are left
// for the dispatch tick to advance.
func (s PointerState) Apply(e PointerEvent) PointerState {
	s.X, s.Y = e.X, e.Y
	switch e.Kind {
	case PointerDown:
		s.Button = true
	case PointerUp:
		s.Button = false
	}
	return s
}
