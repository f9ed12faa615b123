package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sounding-skewt-service/internal/domain"
	"github.com/couchcryptid/sounding-skewt-service/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore archives products in a shared PostgreSQL database.
type PostgresStore struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *observability.Metrics
}

// OpenPostgres opens a connection pool from the given DSN and ensures the
// archive schema exists.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger, metrics *observability.Metrics) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool, logger: logger, metrics: metrics}
	if err := s.createSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) createSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS soundings (
		id                TEXT PRIMARY KEY,
		granule_id        TEXT NOT NULL,
		footprint         INTEGER NOT NULL,
		latitude          DOUBLE PRECISION NOT NULL,
		longitude         DOUBLE PRECISION NOT NULL,
		observation_time  TIMESTAMPTZ NOT NULL,
		quality_flag      INTEGER NOT NULL,
		surface_pressure  DOUBLE PRECISION NOT NULL,
		lcl_pressure      DOUBLE PRECISION NOT NULL,
		lfc_pressure      DOUBLE PRECISION,
		el_pressure       DOUBLE PRECISION,
		cape              DOUBLE PRECISION NOT NULL,
		cin               DOUBLE PRECISION NOT NULL,
		series            JSONB NOT NULL,
		processed_at      TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_soundings_granule ON soundings(granule_id);
	CREATE INDEX IF NOT EXISTS idx_soundings_observed ON soundings(observation_time);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// LoadBatch inserts a batch of products in one transaction, skipping rows
// whose ID is already archived.
func (s *PostgresStore) LoadBatch(ctx context.Context, products []domain.SoundingProduct) error {
	if len(products) == 0 {
		return nil
	}
	start := time.Now()
	err := s.loadBatch(ctx, products)
	observe(s.metrics, "postgres", start, err)
	return err
}

func (s *PostgresStore) loadBatch(ctx context.Context, products []domain.SoundingProduct) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, p := range products {
		series, err := marshalSeries(p)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO soundings (
				id, granule_id, footprint, latitude, longitude, observation_time,
				quality_flag, surface_pressure, lcl_pressure, lfc_pressure,
				el_pressure, cape, cin, series, processed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (id) DO NOTHING`,
			p.ID, p.GranuleID, p.Footprint, p.Geo.Lat, p.Geo.Lon, p.ObservationTime,
			p.QualityFlag, p.SurfacePressure,
			p.LCL.Pressure, optionalPressure(p.LFC), optionalPressure(p.EL),
			p.CAPE, p.CIN, series, p.ProcessedAt,
		)
		if err != nil {
			return fmt.Errorf("archive product %s: %w", p.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
