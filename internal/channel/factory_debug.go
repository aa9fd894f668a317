//go:build debug

package channel

// New creates the channel the scene loop reads work from.
// Debug builds ignore size and hand items over synchronously, which
// surfaces producers that outrun the loop.
func New[T any](size int) Channel[T] {
	return NewUnbuffered[T]()
}
