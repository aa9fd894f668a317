package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink unavailable")
}

func textHandler(buf *bytes.Buffer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})
}

func TestMultiHandler_Handle(t *testing.T) {
	var a, b bytes.Buffer
	multi := NewMultiHandler(nil, textHandler(&a, slog.LevelInfo), failingHandler{}, textHandler(&b, slog.LevelWarn))
	require.Len(t, multi.handlers, 3)

	err := multi.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "frame sent", 0))
	assert.ErrorContains(t, err, "sink unavailable")
	assert.Contains(t, a.String(), "frame sent")
	assert.Empty(t, b.String())
}

func TestMultiHandler_Enabled(t *testing.T) {
	ctx := context.Background()
	info := textHandler(&bytes.Buffer{}, slog.LevelInfo)
	debug := textHandler(&bytes.Buffer{}, slog.LevelDebug)

	assert.False(t, NewMultiHandler().Enabled(ctx, slog.LevelError))
	assert.False(t, NewMultiHandler(info).Enabled(ctx, slog.LevelDebug))
	assert.True(t, NewMultiHandler(info, debug).Enabled(ctx, slog.LevelDebug))
}

func TestMultiHandler_Derive(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(textHandler(&buf, slog.LevelInfo))

	logger := slog.New(multi.WithAttrs([]slog.Attr{slog.String("component", "hub")}).WithGroup("ws"))
	logger.Info("client joined", "id", 7)

	assert.Contains(t, buf.String(), "component=hub")
	assert.Contains(t, buf.String(), "ws.id=7")
	assert.Same(t, multi, multi.WithGroup(""))
}
