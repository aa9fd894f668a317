package stats

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/enixma/dashboard/internal/config"
	"github.com/enixma/dashboard/internal/queue"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxapi "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
)

// Measurement is the InfluxDB measurement every series value is written to.
const Measurement = "traffic_stats"

// ErrExportDisabled is returned by Connect when the exporter is switched off.
var ErrExportDisabled = errors.New("influx export disabled")

// Exporter mirrors statistics snapshots into InfluxDB. When the server
// cannot be reached it writes gzipped line protocol to a backup file.
type Exporter struct {
	cfg     config.InfluxConfig
	logger  zerolog.Logger
	pending *queue.Queue[Snapshot]

	mu         sync.Mutex
	client     influxdb2.Client
	writer     influxapi.WriteAPI
	backup     *gzip.Writer
	backupFile *os.File
	valid      bool
}

// NewExporter creates an exporter that keeps at most cfg.QueueLimit
// snapshots waiting for Flush.
func NewExporter(cfg config.InfluxConfig, logger zerolog.Logger) *Exporter {
	return &Exporter{
		cfg:     cfg,
		logger:  logger.With().Str("component", "influx").Logger(),
		pending: queue.New[Snapshot](cfg.QueueLimit),
	}
}

// Connect establishes a connection to InfluxDB, falling back to the backup
// file when the server does not answer.
func (e *Exporter) Connect(ctx context.Context) error {
	if !e.cfg.Enabled {
		return ErrExportDisabled
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.client = influxdb2.NewClientWithOptions(
		fmt.Sprintf("%s://%s:%s", e.cfg.Protocol, e.cfg.Host, e.cfg.Port),
		e.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	running, err := e.client.Ping(ctx)
	e.valid = err == nil && running
	if !e.valid {
		if e.backup == nil {
			e.logger.Info().Str("backupPath", e.cfg.BackupPath).
				Msg("InfluxDB unreachable, writing to backup file")
			file, err := os.OpenFile(e.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %w", err)
			}
			e.backupFile = file
			e.backup = gzip.NewWriter(file)
		}
		return nil
	}

	if err := e.ensureBucket(ctx); err != nil {
		return err
	}
	e.writer = e.client.WriteAPI(e.cfg.Org, e.cfg.Bucket)
	go func(errs <-chan error) {
		for writeErr := range errs {
			e.logger.Error().Err(writeErr).Str("bucket", e.cfg.Bucket).Msg("Error sending data to InfluxDB")
		}
	}(e.writer.Errors())

	e.logger.Info().Str("bucket", e.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

func (e *Exporter) ensureBucket(ctx context.Context) error {
	orgs := e.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, e.cfg.Org)
	if err != nil {
		e.logger.Info().Str("org", e.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, e.cfg.Org)
		if err != nil {
			return fmt.Errorf("creating organization %s: %w", e.cfg.Org, err)
		}
	}

	buckets := e.client.BucketsAPI()
	if _, err := buckets.FindBucketByName(ctx, e.cfg.Bucket); err == nil {
		return nil
	}
	e.logger.Info().Str("bucket", e.cfg.Bucket).Msg("Bucket not found, creating")
	rule := domain.RetentionRuleTypeExpire
	_, err = buckets.CreateBucketWithName(ctx, org, e.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: int64(e.cfg.Retention / time.Second),
	})
	if err != nil {
		return fmt.Errorf("creating bucket %s: %w", e.cfg.Bucket, err)
	}
	return nil
}

// Enqueue schedules snap for the next Flush.
func (e *Exporter) Enqueue(snap Snapshot) {
	if dropped := e.pending.Push(snap); dropped > 0 {
		e.logger.Warn().Int("dropped", dropped).Msg("Export queue full, discarding oldest snapshots")
	}
}

// Pending returns the number of snapshots waiting for Flush.
func (e *Exporter) Pending() int {
	return e.pending.Len()
}

// Flush writes every queued snapshot.
func (e *Exporter) Flush() error {
	snaps := e.pending.GetAndEmpty()
	if len(snaps) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	written := 0
	for _, snap := range snaps {
		for _, p := range Points(snap) {
			if err := e.writePoint(p); err != nil {
				errs = append(errs, err)
				continue
			}
			written++
		}
	}
	if e.backup != nil {
		if err := e.backup.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("flushing backup file: %w", err))
		}
	}
	e.logger.Debug().Int("snapshots", len(snaps)).Int("points", written).Msg("Statistics exported")
	return errors.Join(errs...)
}

func (e *Exporter) writePoint(p *write.Point) error {
	if e.valid && e.writer != nil {
		e.writer.WritePoint(p)
		return nil
	}
	if e.backup == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}
	line := write.PointToLineProtocol(p, time.Nanosecond)
	if _, err := e.backup.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Run flushes on every interval until ctx is cancelled.
func (e *Exporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Flush(); err != nil {
				e.logger.Error().Err(err).Msg("Error exporting statistics")
			}
		}
	}
}

// Close flushes outstanding data and releases the client and backup file.
func (e *Exporter) Close() error {
	flushErr := e.Flush()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.writer != nil {
		e.writer.Flush()
	}
	if e.client != nil {
		e.client.Close()
	}
	var errs []error
	if flushErr != nil {
		errs = append(errs, flushErr)
	}
	if e.backup != nil {
		errs = append(errs, e.backup.Close(), e.backupFile.Close())
		e.backup, e.backupFile = nil, nil
	}
	return errors.Join(errs...)
}

// Points converts a snapshot to one point per series value. Values are
// tagged with their label when every value has one, and with their slot
// index otherwise.
func Points(snap Snapshot) []*write.Point {
	var points []*write.Point
	for _, chart := range Charts {
		s, ok := snap.Series[chart]
		if !ok {
			continue
		}
		perValue := len(s.Labels) == len(s.Quantity)
		for i, q := range s.Quantity {
			tags := map[string]string{
				"chart": string(chart),
				"pcu":   strconv.FormatBool(snap.PCU),
			}
			switch {
			case perValue:
				tags["label"] = s.Labels[i]
			case len(s.Labels) > 0:
				tags["label"] = s.Labels[0]
				tags["slot"] = strconv.Itoa(i)
			default:
				tags["slot"] = strconv.Itoa(i)
			}
			points = append(points, influxdb2.NewPoint(Measurement, tags, map[string]any{"value": q}, snap.At))
		}
	}
	return points
}
