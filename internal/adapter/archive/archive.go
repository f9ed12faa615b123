// Package archive persists sounding products alongside the sink topic so
// analyses survive topic retention. Two backends are supported: an embedded
// SQLite file for single-node deployments and PostgreSQL for shared ones.
// Writes are idempotent on the product's deterministic ID, so replaying a
// granule never duplicates rows.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sounding-skewt-service/internal/config"
	"github.com/couchcryptid/sounding-skewt-service/internal/domain"
	"github.com/couchcryptid/sounding-skewt-service/internal/observability"
)

// Store is a persistent product archive. It satisfies pipeline.BatchLoader so
// it can sit behind a MultiLoader next to the sink writer.
type Store interface {
	LoadBatch(ctx context.Context, products []domain.SoundingProduct) error
	Close() error
}

// Open creates the archive backend selected by ARCHIVE_DRIVER, or returns
// (nil, nil) when archiving is disabled.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (Store, error) {
	switch cfg.ArchiveDriver {
	case config.ArchiveNone:
		return nil, nil
	case config.ArchiveSQLite:
		return OpenSQLite(cfg.ArchiveSQLitePath, logger, metrics)
	case config.ArchivePostgres:
		return OpenPostgres(ctx, cfg.ArchivePostgres, logger, metrics)
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.ArchiveDriver)
	}
}

// observe records one batch write against the archive metrics.
func observe(metrics *observability.Metrics, backend string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.ArchiveWrites.WithLabelValues(backend, outcome).Inc()
	metrics.ArchiveWriteDuration.Observe(time.Since(start).Seconds())
}
