// Package channel wraps the Go channels that feed single-goroutine loops.
// Producers must never block the loop's owner, so every implementation
// offers a non-blocking TrySend.
package channel

// Channel is the producer and consumer side of a loop's work channel.
type Channel[T any] interface {
	// Send blocks until v is accepted.
	Send(v T)
	// TrySend delivers v only if that would not block.
	TrySend(v T) bool
	Receive() <-chan T
	// Len is the number of items waiting. Always 0 when unbuffered.
	Len() int
}

// Buffered holds up to its capacity of pending items.
type Buffered[T any] chan T

// NewBuffered creates a channel buffering up to size items.
func NewBuffered[T any](size int) Buffered[T] {
	return make(Buffered[T], size)
}

func (b Buffered[T]) Send(v T) { b <- v }

func (b Buffered[T]) TrySend(v T) bool {
	select {
	case b <- v:
		return true
	default:
		return false
	}
}

func (b Buffered[T]) Receive() <-chan T { return b }

func (b Buffered[T]) Len() int { return len(b) }

// Unbuffered hands each item directly to a waiting receiver.
type Unbuffered[T any] struct {
	ch chan T
}

// NewUnbuffered creates a synchronous channel.
func NewUnbuffered[T any]() *Unbuffered[T] {
	return &Unbuffered[T]{ch: make(chan T)}
}

func (u *Unbuffered[T]) Send(v T) { u.ch <- v }

// TrySend succeeds only if a receiver is already waiting.
func (u *Unbuffered[T]) TrySend(v T) bool {
	select {
	case u.ch <- v:
		return true
	default:
		return false
	}
}

func (u *Unbuffered[T]) Receive() <-chan T { return u.ch }

func (u *Unbuffered[T]) Len() int { return 0 }
