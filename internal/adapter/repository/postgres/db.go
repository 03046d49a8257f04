package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// pingInterval is the pause between connection attempts while Postgres starts
const pingInterval = 250 * time.Millisecond

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB opens a connection pool and pings it until it answers, giving up once
// startupWait has passed or ctx is done. A zero startupWait pings once.
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=fundflow sslmode=disable"
func NewDB(ctx context.Context, connectionString string, startupWait time.Duration) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := waitForPing(ctx, db, startupWait); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

func waitForPing(ctx context.Context, db *sql.DB, startupWait time.Duration) error {
	deadline := time.Now().Add(startupWait)
	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		if !time.Now().Add(pingInterval).Before(deadline) {
			return err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-time.After(pingInterval):
		}
	}
}

// Migrate creates the tables used by the repositories when they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
