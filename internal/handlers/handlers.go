// Package handlers turns dashboard commands into scene operations.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enixma/dashboard/internal/dispatcher"
	"github.com/enixma/dashboard/internal/scene"
	"github.com/enixma/dashboard/internal/stats"
	"github.com/enixma/dashboard/pkg/core"
	"github.com/enixma/dashboard/pkg/streaming"
)

// ErrMissingName is returned by commands that need a target name.
var ErrMissingName = errors.New("missing name")

// ErrInvalidPointer is returned for pointer samples of an unknown kind.
var ErrInvalidPointer = errors.New("invalid pointer event")

// SceneRunner runs operations on the goroutine owning the scene.
// *scene.Loop satisfies it.
type SceneRunner interface {
	Submit(op scene.Op) error
	Do(ctx context.Context, op scene.Op) error
}

// LaneSetter stores lane-count input. *scene.Lanes satisfies it.
type LaneSetter interface {
	SetText(name, text string) int
}

// StatsSource produces chart snapshots. *stats.Fetcher satisfies it.
type StatsSource interface {
	Snapshot(ctx context.Context, pcu bool) stats.Snapshot
}

// StatsPublisher delivers chart snapshots to connected pages.
type StatsPublisher interface {
	PublishStats(snap stats.Snapshot)
}

// StatsSink receives every published snapshot. *stats.Exporter satisfies it.
type StatsSink interface {
	Enqueue(snap stats.Snapshot)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Loop      SceneRunner
	Lanes     LaneSetter
	Stats     StatsSource
	Publisher StatsPublisher
	Exporter  StatsSink
	PCU       bool
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Service provides the command handlers.
type Service struct {
	deps   Dependencies
	logger *slog.Logger
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	if deps.Timeout <= 0 {
		deps.Timeout = 5 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		deps:   deps,
		logger: logger.With("component", "handlers"),
	}
}

// RegisterHandlers registers every command with d.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(streaming.TypePointer, s.handlePointer)

	d.Register(streaming.TypeAreaAdd, s.target((*scene.Scene).AddArea), dispatcher.Logged())
	d.Register(streaming.TypeAreaReset, s.target((*scene.Scene).ResetArea), dispatcher.Logged())
	d.Register(streaming.TypeAreaDelete, s.target((*scene.Scene).DeleteArea), dispatcher.Logged())
	d.Register(streaming.TypeCrosslineAdd, s.target((*scene.Scene).AddCrossline), dispatcher.Logged())
	d.Register(streaming.TypeCrosslineReset, s.target((*scene.Scene).ResetCrossline), dispatcher.Logged())
	d.Register(streaming.TypeCrosslineDelete, s.target((*scene.Scene).DeleteCrossline), dispatcher.Logged())
	d.Register(streaming.TypeCrosslineDirection, s.target((*scene.Scene).ToggleDirection), dispatcher.Logged())

	d.Register(streaming.TypeLanes, s.handleLanes, dispatcher.Logged())
	d.Register(streaming.TypeSnapshotRequest, s.handleSnapshot)

	if s.deps.Stats != nil {
		d.Register(streaming.TypeStatsRefresh, s.handleStatsRefresh, dispatcher.Buffered(1), dispatcher.Logged())
	}
}

func (s *Service) handlePointer(e dispatcher.Event) (any, error) {
	var p streaming.PointerPayload
	if err := e.Decode(&p); err != nil {
		return nil, err
	}
	switch p.Kind {
	case core.PointerDown, core.PointerUp, core.PointerMove:
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrInvalidPointer, p.Kind)
	}
	return nil, s.deps.Loop.Submit(func(sc *scene.Scene) {
		sc.Pointer(p)
	})
}

// target adapts a named scene operation into a handler.
func (s *Service) target(op func(*scene.Scene, string) error) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		var p streaming.TargetPayload
		if err := e.Decode(&p); err != nil {
			return nil, err
		}
		if p.Name == "" {
			return nil, fmt.Errorf("%s: %w", e.Command, ErrMissingName)
		}
		return nil, s.run(func(sc *scene.Scene) error {
			return op(sc, p.Name)
		})
	}
}

func (s *Service) handleLanes(e dispatcher.Event) (any, error) {
	var p streaming.LanesPayload
	if err := e.Decode(&p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%s: %w", e.Command, ErrMissingName)
	}
	n := s.deps.Lanes.SetText(p.Name, p.Value)
	s.logger.Debug("lane count set", "name", p.Name, "input", p.Value, "lanes", n)
	return n, nil
}

func (s *Service) handleSnapshot(dispatcher.Event) (any, error) {
	var snap scene.Snapshot
	err := s.run(func(sc *scene.Scene) error {
		snap = sc.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Service) handleStatsRefresh(dispatcher.Event) (any, error) {
	s.RefreshStats(context.Background())
	return nil, nil
}

// RefreshStats fetches every chart and hands the snapshot to the publisher
// and the exporter.
func (s *Service) RefreshStats(ctx context.Context) stats.Snapshot {
	snap := s.deps.Stats.Snapshot(ctx, s.deps.PCU)
	if s.deps.Publisher != nil {
		s.deps.Publisher.PublishStats(snap)
	}
	if s.deps.Exporter != nil {
		s.deps.Exporter.Enqueue(snap)
	}
	s.logger.Debug("stats refreshed", "charts", len(snap.Series), "pcu", snap.PCU)
	return snap
}

// run executes fn on the scene goroutine and returns its error. The result
// channel is buffered so a late op never blocks after a timeout.
func (s *Service) run(fn func(*scene.Scene) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.deps.Timeout)
	defer cancel()

	errc := make(chan error, 1)
	if err := s.deps.Loop.Do(ctx, func(sc *scene.Scene) {
		errc <- fn(sc)
	}); err != nil {
		return err
	}
	return <-errc
}
