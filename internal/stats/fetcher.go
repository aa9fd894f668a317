package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/enixma/dashboard/internal/api"
	"github.com/sourcegraph/conc/iter"
)

// ChartDataSource supplies the series behind each chart. It never fails;
// unavailable series come back as their defaults.
type ChartDataSource interface {
	Series(ctx context.Context, chart Chart, pcu bool) Series
}

// Snapshot is every chart fetched at one instant.
type Snapshot struct {
	At     time.Time        `json:"at"`
	PCU    bool             `json:"pcu"`
	Series map[Chart]Series `json:"series"`
}

// Fetcher reads chart series from the parameter store.
type Fetcher struct {
	store   api.Fetcher
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout bounds each series request.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// NewFetcher creates a Fetcher with a 5 second per-series timeout.
func NewFetcher(store api.Fetcher, logger *slog.Logger, opts ...FetcherOption) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fetcher{
		store:   store,
		timeout: 5 * time.Second,
		logger:  logger.With("component", "stats"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Series fetches one chart.
func (f *Fetcher) Series(ctx context.Context, chart Chart, pcu bool) Series {
	record := chart.Record(pcu)
	if record == "" {
		return chart.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	env, err := f.store.Fetch(ctx, record)
	if err != nil {
		f.logger.Warn("failed to load chart data", "chart", chart, "record", record, "error", err)
		return chart.Default()
	}
	if !env.HasData() {
		return chart.Default()
	}

	var s Series
	if err := json.Unmarshal(env.Data, &s); err != nil {
		f.logger.Warn("malformed chart data", "chart", chart, "record", record, "error", err)
		return chart.Default()
	}
	return s
}

// Snapshot fetches every chart concurrently.
func (f *Fetcher) Snapshot(ctx context.Context, pcu bool) Snapshot {
	series := iter.Map(Charts, func(c *Chart) Series {
		return f.Series(ctx, *c, pcu)
	})
	snap := Snapshot{At: f.now(), PCU: pcu, Series: make(map[Chart]Series, len(Charts))}
	for i, c := range Charts {
		snap.Series[c] = series[i]
	}
	return snap
}
