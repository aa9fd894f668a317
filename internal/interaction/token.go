package interaction

import "github.com/enixma/dashboard/pkg/core"

// Owner names the editor kind that is interpreting the active gesture.
type Owner string

const (
	None      Owner = ""
	Polygon   Owner = "polygon"
	Crossline Owner = "crossline"
)

// Token is the gesture ownership marker shared by every editor on one
// canvas. Last writer wins; the only automatic release is a pointer sample
// with the button up. It is not safe for concurrent use: the scene loop
// goroutine is its only caller, and other goroutines reach it through
// Loop.Do.
type Token struct {
	owner Owner
}

// NewToken creates an unowned Token
func NewToken() *Token {
	return &Token{}
}

// SetOwner assigns ownership unconditionally
func (t *Token) SetOwner(o Owner) {
	t.owner = o
}

// ClearOwner releases ownership
func (t *Token) ClearOwner() {
	t.SetOwner(None)
}

// IsOwnedBy reports whether o currently holds the token
func (t *Token) IsOwnedBy(o Owner) bool {
	return t.owner == o
}

// Owner returns the current holder, None if free
func (t *Token) Owner() Owner {
	return t.owner
}

// HeldByOther reports whether someone other than o holds the token.
func (t *Token) HeldByOther(o Owner) bool {
	return t.owner != None && t.owner != o
}

// OnPointerSample must be called by every editor before it interprets a
// sample. A released button clears any owner.
func (t *Token) OnPointerSample(s core.PointerState) {
	if s.Button {
		return
	}
	t.owner = None
}
