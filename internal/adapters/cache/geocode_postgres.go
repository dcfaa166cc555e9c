// Package cache holds the geocode-result and road-graph-edge caches that
// back the geocoder adapter and the road-network provider. None of it
// persists fleet or order state — the core remains stateless per request
// (spec §1); these are read-through caches over calls to external services.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/platform/obs"
	"dispatch-service/internal/ports"
)

// PostgresGeocodeCache is a Postgres-backed cache mapping normalized
// address strings to resolved coordinates, adapted from the teacher's
// SQLGeocodeCache (single-key Get/Put, upsert-on-conflict writes).
type PostgresGeocodeCache struct {
	DB *sql.DB
}

// NewPostgresGeocodeCache wraps db.
func NewPostgresGeocodeCache(db *sql.DB) *PostgresGeocodeCache {
	return &PostgresGeocodeCache{DB: db}
}

// Get returns the cached forward-geocode result for key, if present.
func (c *PostgresGeocodeCache) Get(ctx context.Context, key string) (_ ports.ForwardResult, _ bool, err error) {
	defer obs.Time(ctx, "cache.geocode.postgres.get")(&err)

	if c.DB == nil {
		return ports.ForwardResult{}, false, errors.New("geocode cache: db is nil")
	}

	row := c.DB.QueryRowContext(ctx, `
		SELECT lat, lon, normalized_address, confidence
		FROM geocode_cache
		WHERE address_key = $1;
	`, key)

	var lat, lon, confidence float64
	var normalized string
	if err := row.Scan(&lat, &lon, &normalized, &confidence); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.ForwardResult{}, false, nil
		}
		return ports.ForwardResult{}, false, fmt.Errorf("geocode cache: query: %w", err)
	}

	return ports.ForwardResult{
		Coordinate:        domain.Coordinate{Lat: lat, Lon: lon},
		NormalizedAddress: normalized,
		Confidence:        confidence,
	}, true, nil
}

// Put stores or updates the cached forward-geocode result for key.
func (c *PostgresGeocodeCache) Put(ctx context.Context, key string, r ports.ForwardResult) (err error) {
	defer obs.Time(ctx, "cache.geocode.postgres.put")(&err)

	if c.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	_, err = c.DB.ExecContext(ctx, `
		INSERT INTO geocode_cache (address_key, lat, lon, normalized_address, confidence)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address_key) DO UPDATE
		SET lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			normalized_address = EXCLUDED.normalized_address,
			confidence = EXCLUDED.confidence;
	`, key, r.Coordinate.Lat, r.Coordinate.Lon, r.NormalizedAddress, r.Confidence)
	if err != nil {
		return fmt.Errorf("geocode cache: upsert: %w", err)
	}
	return nil
}

// InitSchema creates the tables PostgresGeocodeCache and
// PostgresGraphEdgeCache need. Adapted from the teacher's
// repositories.InitSchema, scoped to caches rather than package state since
// this system persists nothing about fleets or orders.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: db is nil")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS geocode_cache (
			address_key TEXT PRIMARY KEY,
			lat DOUBLE PRECISION NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			normalized_address TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS graph_edge_cache (
			bbox_key TEXT PRIMARY KEY,
			graph_json JSONB NOT NULL
		);`,
	}

	for i, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}
	return nil
}
