// Package server serves the dashboard page's live connection: pointer and
// command messages in, cursor, panel, geometry and statistics updates out.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/enixma/dashboard/internal/dispatcher"
	"github.com/enixma/dashboard/internal/logging"
	"github.com/enixma/dashboard/internal/render"
	"github.com/enixma/dashboard/internal/scene"
	"github.com/enixma/dashboard/internal/stats"
	"github.com/enixma/dashboard/pkg/core"
	"github.com/enixma/dashboard/pkg/streaming"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

const requestTimeout = 5 * time.Second

// Runner runs operations on the scene goroutine. *scene.Loop satisfies it.
type Runner interface {
	Do(ctx context.Context, op scene.Op) error
}

// Dispatcher routes commands. *dispatcher.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(e dispatcher.Event) (any, error)
}

// Dependencies holds the collaborators a Server needs.
type Dependencies struct {
	Loop       Runner
	Dispatcher Dispatcher
	Panels     *scene.Panels
	// Raster is the loop's drawing surface. It is only read on the loop
	// goroutine.
	Raster *render.Raster
	Logger *slog.Logger
}

// Server is the dashboard HTTP server.
type Server struct {
	deps     Dependencies
	hub      *hub
	upgrader ws.Upgrader
	mux      *http.ServeMux
	logger   *slog.Logger

	mu         sync.RWMutex
	lastCursor core.Cursor
	lastSnap   []byte // marshalled scene.Snapshot
}

// New creates a server and subscribes it to panel changes.
func New(deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		deps: deps,
		hub:  newHub(),
		upgrader: ws.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The page is served from the camera itself or a local proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		mux:    http.NewServeMux(),
		logger: logger.With("component", "server"),
	}

	s.mux.HandleFunc("GET /ws", s.serveWS)
	s.mux.HandleFunc("GET /overlay.png", s.serveOverlay)
	s.mux.HandleFunc("GET /api/geometry", s.serveGeometry)
	s.mux.HandleFunc("GET /health", s.serveHealth)

	if deps.Panels != nil {
		deps.Panels.Subscribe(s.publishPanel)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Clients returns the number of connected pages.
func (s *Server) Clients() int {
	return s.hub.len()
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// OnFrame publishes cursor and geometry changes. It is a scene.FrameFunc
// and runs on the loop goroutine.
func (s *Server) OnFrame(sc *scene.Scene, cursor core.Cursor) {
	s.mu.Lock()
	cursorChanged := cursor != s.lastCursor
	s.lastCursor = cursor
	s.mu.Unlock()

	if cursorChanged {
		s.broadcast(streaming.TypeCursor, streaming.CursorPayload{Cursor: cursor})
	}

	snap, err := json.Marshal(sc.Snapshot())
	if err != nil {
		s.logger.Error("failed to encode snapshot", "error", err)
		return
	}

	s.mu.Lock()
	changed := !bytes.Equal(snap, s.lastSnap)
	if changed {
		s.lastSnap = snap
	}
	s.mu.Unlock()

	if changed {
		s.broadcastRaw(streaming.TypeSnapshot, snap)
	}
}

// PublishStats sends a chart snapshot to every page.
func (s *Server) PublishStats(snap stats.Snapshot) {
	payload := streaming.StatsPayload{
		At:     snap.At,
		PCU:    snap.PCU,
		Series: make(map[string]json.RawMessage, len(snap.Series)),
	}
	for chart, series := range snap.Series {
		raw, err := json.Marshal(series)
		if err != nil {
			s.logger.Error("failed to encode series", "chart", chart, "error", err)
			continue
		}
		payload.Series[string(chart)] = raw
	}
	s.broadcast(streaming.TypeStats, payload)
}

func (s *Server) publishPanel(p scene.Panel) {
	s.broadcast(streaming.TypePanel, panelPayload(p))
}

func panelPayload(p scene.Panel) streaming.PanelPayload {
	return streaming.PanelPayload{
		Kind:    string(p.Kind),
		Name:    p.Name,
		Present: p.Present,
		Lanes:   p.Lanes,
	}
}

func (s *Server) broadcast(typ string, payload any) {
	data, err := encode(typ, payload)
	if err != nil {
		s.logger.Error("failed to encode message", "type", typ, "error", err)
		return
	}
	s.hub.broadcast(data)
}

func (s *Server) broadcastRaw(typ string, payload json.RawMessage) {
	data, err := json.Marshal(streaming.Envelope{Type: typ, Payload: payload})
	if err != nil {
		s.logger.Error("failed to encode message", "type", typ, "error", err)
		return
	}
	s.hub.broadcast(data)
}

func encode(typ string, payload any) ([]byte, error) {
	env, err := streaming.NewEnvelope(typ, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	ctx := logging.WithSession(r.Context(), id)
	c := newClient(id, conn, s.logger.With("session", id))

	s.hub.add(c)
	go c.writeLoop()
	s.logger.InfoContext(ctx, "page connected", "remote", r.RemoteAddr, "clients", s.hub.len())

	s.sendInitialState(c)
	s.readLoop(ctx, c)

	s.hub.remove(c)
	c.close()
	s.logger.InfoContext(ctx, "page disconnected", "clients", s.hub.len())
}

func (s *Server) sendInitialState(c *client) {
	if s.deps.Panels != nil {
		for _, p := range s.deps.Panels.All() {
			if data, err := encode(streaming.TypePanel, panelPayload(p)); err == nil {
				c.send(data)
			}
		}
	}

	s.mu.RLock()
	cursor, snap := s.lastCursor, s.lastSnap
	s.mu.RUnlock()

	if cursor != "" {
		if data, err := encode(streaming.TypeCursor, streaming.CursorPayload{Cursor: cursor}); err == nil {
			c.send(data)
		}
	}
	if snap != nil {
		if data, err := json.Marshal(streaming.Envelope{Type: streaming.TypeSnapshot, Payload: snap}); err == nil {
			c.send(data)
		}
	}
}

func (s *Server) readLoop(ctx context.Context, c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				s.logger.WarnContext(ctx, "websocket read error", "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var env streaming.Envelope
		if err := json.Unmarshal(msg, &env); err != nil || env.Type == "" {
			s.reply(c, streaming.ErrorMessage{Type: streaming.TypeError, Error: "malformed message"})
			continue
		}

		res, err := s.deps.Dispatcher.Dispatch(dispatcher.Event{
			Command: env.Type,
			Session: c.id,
			Payload: env.Payload,
		})
		if err != nil {
			s.logger.DebugContext(ctx, "command rejected", "type", env.Type, "error", err)
			s.reply(c, streaming.ErrorMessage{Type: streaming.TypeError, For: env.Type, Error: err.Error()})
			continue
		}

		switch env.Type {
		case streaming.TypePointer:
		case streaming.TypeSnapshotRequest:
			if data, err := encode(streaming.TypeSnapshot, res); err == nil {
				c.send(data)
			}
		default:
			s.reply(c, streaming.AckMessage{Type: streaming.TypeAck, For: env.Type})
		}
	}
}

func (s *Server) reply(c *client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.send(data)
}

func (s *Server) serveOverlay(w http.ResponseWriter, r *http.Request) {
	if s.deps.Raster == nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var buf bytes.Buffer
	errc := make(chan error, 1)
	if err := s.deps.Loop.Do(ctx, func(*scene.Scene) {
		errc <- s.deps.Raster.EncodePNG(&buf)
	}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err := <-errc; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) serveGeometry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snapc := make(chan scene.Snapshot, 1)
	if err := s.deps.Loop.Do(ctx, func(sc *scene.Scene) {
		snapc <- sc.Snapshot()
	}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, <-snapc)
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "clients": s.hub.len()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
