package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool connects to Postgres and verifies the connection.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the tables and indexes if they do not exist. The
// partial unique index on plate enforces uniqueness among live vehicles
// only, so a soft-deleted plate can be registered again.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS vehicles (
			id UUID PRIMARY KEY,
			plate VARCHAR(8) NOT NULL,
			brand INTEGER NOT NULL,
			model VARCHAR(100) NOT NULL,
			year INTEGER NOT NULL,
			status INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_vehicles_plate
			ON vehicles (plate) WHERE NOT is_deleted`,
		`CREATE TABLE IF NOT EXISTS locations (
			id UUID PRIMARY KEY,
			vehicle_id UUID NOT NULL REFERENCES vehicles (id),
			latitude NUMERIC(10,7) NOT NULL,
			longitude NUMERIC(10,7) NOT NULL,
			speed NUMERIC(5,2),
			recorded_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS ix_locations_vehicle_id
			ON locations (vehicle_id) WHERE NOT is_deleted`,
		`CREATE INDEX IF NOT EXISTS ix_locations_vehicle_recorded_at
			ON locations (vehicle_id, recorded_at DESC) WHERE NOT is_deleted`,
		`CREATE INDEX IF NOT EXISTS ix_locations_recorded_at
			ON locations (recorded_at) WHERE NOT is_deleted`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
