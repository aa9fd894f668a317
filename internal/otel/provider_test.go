package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/enixma/dashboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), Config{})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.NotNil(t, p.Meter("test"))
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithoutExporter(t *testing.T) {
	_, err := New(context.Background(), Config{OTelConfig: config.OTelConfig{Enabled: true, ServiceName: "dashboard"}})
	assert.ErrorIs(t, err, ErrNoExporter)
}

func TestNew_FileExporter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(context.Background(), Config{
		OTelConfig: config.OTelConfig{Enabled: true, ServiceName: "dashboard", BatchTimeout: time.Second},
		LogWriter:  &buf,
	})
	require.NoError(t, err)

	assert.True(t, p.Enabled())
	require.NotNil(t, p.LoggerProvider())
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_FileExporterRecordsMetrics(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(context.Background(), Config{
		OTelConfig: config.OTelConfig{Enabled: true, ServiceName: "dashboard", MetricInterval: time.Hour},
		LogWriter:  &buf,
	})
	require.NoError(t, err)

	counter, err := p.Meter("test").Int64Counter("sync.commits")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	require.NoError(t, p.Flush(context.Background()))
	assert.Contains(t, buf.String(), "sync.commits")
	assert.NoError(t, p.Shutdown(context.Background()))
}
