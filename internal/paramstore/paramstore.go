// Package paramstore serves the device parameter store contract over HTTP.
// Every record lives at <endpoint>?name=<name>; replies are JSON with status
// 200 and any failure reported in the "error" field.
package paramstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/enixma/dashboard/internal/config"
	"github.com/enixma/dashboard/internal/storage"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// MaxBodySize is the largest accepted record body.
const MaxBodySize = 1 << 20

// Error strings returned in the "error" field.
const (
	ErrMissingName       = "Missing name parameter"
	ErrNotFound          = "Resource not found"
	ErrContentType       = "Unsupported content type. Expected application/json"
	ErrContentLength     = "Invalid content length"
	ErrUnsupportedMethod = "Unsupported method"
	ErrSaveFailed        = "Failed to save data to file"
	ErrUpdateFailed      = "Failed to update data file"
	ErrDeleteFailed      = "Failed to delete file"
	ErrLoadFailed        = "Failed to load data"
)

const (
	statusSuccess   = "success"
	contentTypeJSON = "application/json"
	defaultEndpoint = "/local/enixma_analytic/parameters.cgi"
	shutdownTimeout = 5 * time.Second
)

// Server is the parameter store emulator.
type Server struct {
	app      *fiber.App
	store    storage.Backend
	endpoint string
	logger   *slog.Logger
}

// New creates a server over an initialised backend.
func New(store storage.Backend, cfg config.ParamStoreConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	s := &Server{
		store:    store,
		endpoint: endpoint,
		logger:   logger.With("component", "paramstore"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "Parameter Store",
		BodyLimit:    2 * MaxBodySize,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Content-Type", "Accept"},
		AllowMethods: []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete},
	}))
	s.app.Use(s.accessLog)

	s.app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})
	s.app.All(s.endpoint, s.handle)

	return s
}

// App exposes the fiber application, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Endpoint returns the record path.
func (s *Server) Endpoint() string {
	return s.endpoint
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	s.logger.Info("listening", "addr", addr, "endpoint", s.endpoint)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}

func (s *Server) accessLog(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"name", c.Query("name"),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start),
	)
	return err
}

func (s *Server) handle(c fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet:
		return s.get(c)
	case fiber.MethodPost:
		return s.post(c)
	case fiber.MethodPut:
		return s.put(c)
	case fiber.MethodDelete:
		return s.delete(c)
	case fiber.MethodOptions:
		return c.SendStatus(fiber.StatusNoContent)
	default:
		return c.JSON(fiber.Map{"error": ErrUnsupportedMethod})
	}
}

func (s *Server) get(c fiber.Ctx) error {
	resp := fiber.Map{"method": fiber.MethodGet}
	name := c.Query("name")

	if name == "" {
		all, err := s.store.All()
		if err != nil {
			s.logger.Error("failed to list records", "error", err)
			all = map[string]json.RawMessage{}
		}
		resp["data"] = all
		return c.JSON(resp)
	}

	resp["name"] = name
	data, err := s.store.Load(name)
	switch {
	case err == nil:
		resp["data"] = data
	case errors.Is(err, storage.ErrNotFound):
		resp["data"] = nil
	default:
		s.logger.Error("failed to load record", "name", name, "error", err)
		resp["data"] = nil
	}
	return c.JSON(resp)
}

func (s *Server) post(c fiber.Ctx) error {
	resp := fiber.Map{"method": fiber.MethodPost}
	name := c.Query("name")
	if name == "" {
		resp["error"] = ErrMissingName
		return c.JSON(resp)
	}

	data, msg := s.readBody(c)
	if msg != "" {
		resp["error"] = msg
		return c.JSON(resp)
	}

	if err := s.store.Save(name, data); err != nil {
		s.logger.Error("failed to save record", "name", name, "error", err)
		resp["error"] = ErrSaveFailed
		return c.JSON(resp)
	}

	s.logger.Info("record created", "name", name, "bytes", len(data))
	resp["status"] = statusSuccess
	resp["name"] = name
	resp["data"] = data
	return c.JSON(resp)
}

func (s *Server) put(c fiber.Ctx) error {
	resp := fiber.Map{"method": fiber.MethodPut}
	name := c.Query("name")
	if name == "" {
		resp["error"] = ErrMissingName
		return c.JSON(resp)
	}

	exists, err := storage.Exists(s.store, name)
	if err != nil {
		s.logger.Error("failed to load record", "name", name, "error", err)
		resp["error"] = ErrLoadFailed
		return c.JSON(resp)
	}
	if !exists {
		resp["error"] = ErrNotFound
		return c.JSON(resp)
	}

	data, msg := s.readBody(c)
	if msg != "" {
		resp["error"] = msg
		return c.JSON(resp)
	}

	if err := s.store.Save(name, data); err != nil {
		s.logger.Error("failed to update record", "name", name, "error", err)
		resp["error"] = ErrUpdateFailed
		return c.JSON(resp)
	}

	s.logger.Info("record updated", "name", name, "bytes", len(data))
	resp["status"] = statusSuccess
	resp["name"] = name
	resp["data"] = data
	return c.JSON(resp)
}

func (s *Server) delete(c fiber.Ctx) error {
	resp := fiber.Map{"method": fiber.MethodDelete}
	name := c.Query("name")
	if name == "" {
		resp["error"] = ErrMissingName
		return c.JSON(resp)
	}

	err := s.store.Delete(name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		resp["error"] = ErrNotFound
	case err != nil:
		s.logger.Error("failed to delete record", "name", name, "error", err)
		resp["error"] = ErrDeleteFailed
	default:
		s.logger.Info("record deleted", "name", name)
		resp["status"] = statusSuccess
		resp["name"] = name
	}
	return c.JSON(resp)
}

// readBody validates and compacts a JSON request body. A non-empty message
// is the error to report.
func (s *Server) readBody(c fiber.Ctx) (json.RawMessage, string) {
	if !strings.Contains(c.Get(fiber.HeaderContentType), contentTypeJSON) {
		return nil, ErrContentType
	}

	body := c.Body()
	if len(body) == 0 || len(body) > MaxBodySize {
		return nil, ErrContentLength
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err.Error()
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return nil, err.Error()
	}
	return json.RawMessage(buf.Bytes()), ""
}
