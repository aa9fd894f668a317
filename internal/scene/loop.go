package scene

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/enixma/dashboard/internal/channel"
	"github.com/enixma/dashboard/internal/render"
	"github.com/enixma/dashboard/pkg/core"
)

var (
	// ErrQueueFull is returned when the loop cannot accept more work.
	ErrQueueFull = errors.New("scene queue full")
	// ErrStopped is returned for work submitted after Run returned.
	ErrStopped = errors.New("scene loop stopped")
)

// Op is work run on the loop goroutine with exclusive access to the scene.
type Op func(*Scene)

// FrameFunc is called on the loop goroutine after every tick.
type FrameFunc func(s *Scene, cursor core.Cursor)

// Loop owns a Scene and its surface. Pointer events, UI commands and redraw
// ticks all run on the goroutine executing Run.
type Loop struct {
	scene    *Scene
	surface  render.Surface
	interval time.Duration
	ops      channel.Channel[Op]
	frames   []FrameFunc
	stopped  chan struct{}
	logger   *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithRefreshRate sets how many ticks run per second.
func WithRefreshRate(hz int) LoopOption {
	return func(l *Loop) {
		if hz > 0 {
			l.interval = time.Second / time.Duration(hz)
		}
	}
}

// WithQueueSize sets how many operations may wait for the loop.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		l.ops = channel.New[Op](n)
	}
}

// WithFrameFunc adds a hook run after every tick.
func WithFrameFunc(fn FrameFunc) LoopOption {
	return func(l *Loop) {
		l.frames = append(l.frames, fn)
	}
}

// WithLogger sets the loop logger.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop creates a loop that ticks at 60 Hz unless configured otherwise.
func NewLoop(scene *Scene, surface render.Surface, opts ...LoopOption) *Loop {
	l := &Loop{
		scene:    scene,
		surface:  surface,
		interval: time.Second / 60,
		stopped:  make(chan struct{}),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.ops == nil {
		l.ops = channel.New[Op](256)
	}
	l.logger = l.logger.With("component", "scene-loop")
	return l
}

// Submit queues op without waiting for it to run.
func (l *Loop) Submit(op Op) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}
	if !l.ops.TrySend(op) {
		return ErrQueueFull
	}
	return nil
}

// Do queues op and waits until it has run.
func (l *Loop) Do(ctx context.Context, op Op) error {
	done := make(chan struct{})
	if err := l.Submit(func(s *Scene) {
		defer close(done)
		op(s)
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued operations.
func (l *Loop) Pending() int {
	return l.ops.Len()
}

// Run processes operations and ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("scene loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("scene loop stopped", "pending", l.ops.Len())
			return ctx.Err()
		case op := <-l.ops.Receive():
			l.run(op)
		case <-ticker.C:
			l.tick()
		}
	}
}

// Tick runs one dispatch pass immediately. It must only be called from
// inside an Op or before Run starts.
func (l *Loop) Tick() core.Cursor {
	return l.tick()
}

func (l *Loop) tick() core.Cursor {
	cursor := l.scene.Tick(l.surface)
	for _, fn := range l.frames {
		fn(l.scene, cursor)
	}
	return cursor
}

func (l *Loop) run(op Op) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("scene operation panicked", "panic", r)
		}
	}()
	op(l.scene)
}
