//go:build !debug

package channel

// New creates the channel the scene loop reads work from.
// Production builds buffer up to size items.
func New[T any](size int) Channel[T] {
	return NewBuffered[T](size)
}
