package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/enixma/dashboard/pkg/core"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Committer persists editor shapes without blocking the caller.
type Committer interface {
	Commit(name string, payload any, method core.Method)
}

// Syncer runs Client commits in the background. Outcomes are only logged;
// nothing is reported back to the editors.
type Syncer struct {
	ctx    context.Context
	client *Client
	logger *slog.Logger
	wg     conc.WaitGroup

	commits  metric.Int64Counter
	failures metric.Int64Counter
	upgrades metric.Int64Counter
}

// NewSyncer creates a Syncer. ctx bounds every commit it starts.
func NewSyncer(ctx context.Context, client *Client, logger *slog.Logger) (*Syncer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Syncer{
		ctx:    ctx,
		client: client,
		logger: logger.With("component", "sync"),
	}

	m := meter()

	var err error
	s.commits, err = m.Int64Counter("sync.commits",
		metric.WithDescription("Commits sent to the parameter store"))
	if err != nil {
		return nil, fmt.Errorf("creating commits counter: %w", err)
	}
	s.failures, err = m.Int64Counter("sync.failures",
		metric.WithDescription("Commits that did not reach the parameter store"))
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}
	s.upgrades, err = m.Int64Counter("sync.upgrades",
		metric.WithDescription("Creates sent as updates because the record existed"))
	if err != nil {
		return nil, fmt.Errorf("creating upgrades counter: %w", err)
	}

	return s, nil
}

// Commit serialises payload now and sends it in the background.
func (s *Syncer) Commit(name string, payload any, method core.Method) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode payload", "name", name, "method", method, "error", err)
		return
	}

	s.wg.Go(func() {
		s.send(name, body, method)
	})
}

// Wait blocks until every started commit has finished.
func (s *Syncer) Wait() {
	if r := s.wg.WaitAndRecover(); r != nil {
		s.logger.Error("commit panicked", "error", r.AsError())
	}
}

func (s *Syncer) send(name string, body []byte, method core.Method) {
	attrs := metric.WithAttributes(attribute.String("name", name), attribute.String("method", string(method)))
	s.commits.Add(s.ctx, 1, attrs)

	res, err := s.client.Commit(s.ctx, name, body, method)
	if res.Upgraded {
		s.upgrades.Add(s.ctx, 1, attrs)
	}
	if err != nil {
		s.failures.Add(s.ctx, 1, attrs)
		args := []any{"name", name, "method", res.Method, "error", err}
		var se *StatusError
		if errors.As(err, &se) {
			args = append(args, "status", se.Status, "body", se.Body)
		}
		s.logger.Error("commit failed", args...)
		return
	}

	s.logger.Debug("commit complete", "name", name, "method", res.Method, "upgraded", res.Upgraded)
}
