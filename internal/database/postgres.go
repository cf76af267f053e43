// internal/database/postgres.go
package database

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the global connection pool. Nil when persistence is disabled; all
// writers here treat that as a no-op because match and action history are
// optional side channels, never inputs to live room state.
var DB *pgxpool.Pool

// Connect opens the pool from DATABASE_URL. An unset URL disables
// persistence rather than failing startup.
func Connect(ctx context.Context) error {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("unable to ping database: %w", err)
	}
	DB = pool
	return nil
}

// Enabled reports whether persistence is connected.
func Enabled() bool {
	return DB != nil
}

// Close releases the pool.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}
