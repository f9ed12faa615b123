package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sounding-skewt-service/internal/domain"
	"github.com/couchcryptid/sounding-skewt-service/internal/observability"
	_ "modernc.org/sqlite"
)

// SQLiteStore archives products in an embedded SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	logger  *slog.Logger
	metrics *observability.Metrics
}

// OpenSQLite opens or creates the archive database at the given path.
func OpenSQLite(path string, logger *slog.Logger, metrics *observability.Metrics) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger, metrics: metrics}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS soundings (
		id TEXT PRIMARY KEY,
		granule_id TEXT NOT NULL,
		footprint INTEGER NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		observation_time TEXT NOT NULL,
		quality_flag INTEGER NOT NULL,
		surface_pressure REAL NOT NULL,
		lcl_pressure REAL NOT NULL,
		lfc_pressure REAL,
		el_pressure REAL,
		cape REAL NOT NULL,
		cin REAL NOT NULL,
		series_json TEXT NOT NULL,
		processed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_soundings_granule ON soundings(granule_id);
	CREATE INDEX IF NOT EXISTS idx_soundings_observed ON soundings(observation_time);
	`
	_, err := db.Exec(schema)
	return err
}

// LoadBatch inserts a batch of products in one transaction. Rows whose ID is
// already archived are left untouched.
func (s *SQLiteStore) LoadBatch(ctx context.Context, products []domain.SoundingProduct) error {
	if len(products) == 0 {
		return nil
	}
	start := time.Now()
	err := s.loadBatch(ctx, products)
	observe(s.metrics, "sqlite", start, err)
	return err
}

func (s *SQLiteStore) loadBatch(ctx context.Context, products []domain.SoundingProduct) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO soundings (
			id, granule_id, footprint, latitude, longitude, observation_time,
			quality_flag, surface_pressure, lcl_pressure, lfc_pressure,
			el_pressure, cape, cin, series_json, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare archive insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		series, err := marshalSeries(p)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			p.ID, p.GranuleID, p.Footprint, p.Geo.Lat, p.Geo.Lon,
			p.ObservationTime.UTC().Format(time.RFC3339),
			p.QualityFlag, p.SurfacePressure,
			p.LCL.Pressure, optionalPressure(p.LFC), optionalPressure(p.EL),
			p.CAPE, p.CIN, series,
			p.ProcessedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("archive product %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of archived soundings.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM soundings").Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// productSeries is the JSON blob of plot-ready vertical series stored per row.
type productSeries struct {
	Pressure          []float64 `json:"pressure"`
	Temperature       []float64 `json:"temperature"`
	DewPoint          []float64 `json:"dew_point"`
	ParcelTemperature []float64 `json:"parcel_temperature"`
}

func marshalSeries(p domain.SoundingProduct) (string, error) {
	data, err := json.Marshal(productSeries{
		Pressure:          p.Pressure,
		Temperature:       p.Temperature,
		DewPoint:          p.DewPoint,
		ParcelTemperature: p.ParcelTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal series for %s: %w", p.ID, err)
	}
	return string(data), nil
}

func optionalPressure(l *domain.LevelMark) any {
	if l == nil {
		return nil
	}
	return l.Pressure
}
