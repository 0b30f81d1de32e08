// Package metrics writes per-frame timing points to InfluxDB, falling
// back to a gzip backup file on disk when InfluxDB is unreachable.
package metrics

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultBucketNames are the buckets Connect ensures exist and opens
// writers for. RecordFrameTiming writes only to render_timing.
var DefaultBucketNames = []string{
	"render_timing",
	"composite_timing",
}

// Manager handles InfluxDB connections and writes for the render loop's
// per-frame timing points.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string
}

// NewManager creates a new InfluxDB metrics manager.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: DefaultBucketNames,
		Logger:      log,
		BackupPath:  backupPath,
	}
}

// Connect establishes a connection to InfluxDB, or prepares a gzip
// backup file if the server cannot be reached.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(context.Background())
	if err != nil || !running {
		m.IsValid = false
		if m.BackupWriter == nil {
			m.Logger.Info().Str("backupPath", m.BackupPath).
				Msg("metrics: InfluxDB unreachable, writing to backup file")

			file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("metrics: creating backup file: %w", err)
			}
			m.BackupWriter = gzip.NewWriter(file)
		}
	} else {
		m.IsValid = true
	}

	if m.IsValid {
		if err := m.setupOrganizationAndBuckets(); err != nil {
			return err
		}
		m.CreateWriters()
		m.Logger.Info().Msg("metrics: InfluxDB client initialized")
	} else {
		m.Logger.Warn().Msg("metrics: using backup writer")
	}

	return nil
}

func (m *Manager) setupOrganizationAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")

	if _, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName); err != nil {
		m.Logger.Info().Str("org", orgName).Msg("metrics: organization not found, creating")
		if _, err := m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName); err != nil {
			return fmt.Errorf("metrics: creating organization %q: %w", orgName, err)
		}
	}

	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		return fmt.Errorf("metrics: getting organization %q: %w", orgName, err)
	}

	for _, bucket := range m.BucketNames {
		if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, bucket); err != nil {
			m.Logger.Info().Str("bucket", bucket).Msg("metrics: bucket not found, creating")
			rule := domain.RetentionRuleTypeExpire
			_, err := m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
				Type:         &rule,
				EverySeconds: 60 * 60 * 24 * 30,
			})
			if err != nil {
				return fmt.Errorf("metrics: creating bucket %q: %w", bucket, err)
			}
		}
	}

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		m.Writers[bucket] = m.Client.WriteAPI(orgName, bucket)

		errorsCh := m.Writers[bucket].Errors()
		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("metrics: error sending point")
			}
		}(bucket, errorsCh)
	}
}

// WritePoint writes a point to InfluxDB, or appends its line-protocol
// form to the backup file if InfluxDB is unavailable.
func (m *Manager) WritePoint(bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		writer, ok := m.Writers[bucket]
		if !ok {
			return fmt.Errorf("metrics: bucket %q not registered", bucket)
		}
		writer.WritePoint(point)
		return nil
	}

	if m.BackupWriter == nil {
		return errors.New("metrics: InfluxDB client not initialized and backup writer not available")
	}
	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(lineProtocol + "\n")); err != nil {
		return fmt.Errorf("metrics: writing to backup file: %w", err)
	}
	return nil
}

// RecordFrameTiming writes one point per rendered frame to the
// render_timing bucket: total frame latency plus the render and
// composite phase breakdown.
func (m *Manager) RecordFrameTiming(frameNumber, peerCount int, render, composite, total time.Duration) error {
	point := influxdb2_write.NewPointWithMeasurement("frame").
		AddTag("peers", fmt.Sprintf("%d", peerCount)).
		AddField("frame", frameNumber).
		AddField("render_ms", float64(render.Microseconds())/1000).
		AddField("composite_ms", float64(composite.Microseconds())/1000).
		AddField("total_ms", float64(total.Microseconds())/1000).
		SetTime(time.Now())
	return m.WritePoint("render_timing", point)
}
