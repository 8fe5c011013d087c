package counters

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cartflow/server/internal/config"
	_ "github.com/lib/pq"
)

// defaultQueryTimeout bounds a counter allocation when the caller's context
// carries no deadline of its own.
const defaultQueryTimeout = 5 * time.Second

// PostgresBackend implements Backend on a single table keyed by
// (terminal_id, counter_name), using an atomic UPDATE ... RETURNING to
// increment and an upsert to seed the first row.
type PostgresBackend struct {
	db        *sql.DB
	ownsDB    bool
	tableName string
}

// NewPostgresBackend opens a dedicated connection pool for the counter table.
func NewPostgresBackend(connectionString string, pool config.PostgresPoolConfig, tableName string) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	config.ApplyPostgresPoolSettings(db, pool)

	b := &PostgresBackend{db: db, ownsDB: true, tableName: tableNameOrDefault(tableName)}
	if err := b.createTable(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

// NewPostgresBackendWithDB reuses a shared connection pool (e.g. C2's
// fallback store pool) instead of opening a dedicated one.
func NewPostgresBackendWithDB(db *sql.DB, tableName string) (*PostgresBackend, error) {
	b := &PostgresBackend{db: db, ownsDB: false, tableName: tableNameOrDefault(tableName)}
	if err := b.createTable(); err != nil {
		return nil, err
	}
	return b, nil
}

func tableNameOrDefault(name string) string {
	if name == "" {
		return "info_terminal_counter"
	}
	return name
}

func (b *PostgresBackend) createTable() error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			terminal_id  TEXT NOT NULL,
			counter_name TEXT NOT NULL,
			value        BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (terminal_id, counter_name)
		)
	`, b.tableName)
	_, err := b.db.Exec(schema)
	return err
}

// Allocate increments and returns the next value for (terminalID,
// counterName). A missing row is seeded via INSERT ... ON CONFLICT DO
// NOTHING before the increment so concurrent first-callers race safely.
func (b *PostgresBackend) Allocate(ctx context.Context, terminalID, counterName string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	seed := fmt.Sprintf(`
		INSERT INTO %s (terminal_id, counter_name, value)
		VALUES ($1, $2, 0)
		ON CONFLICT (terminal_id, counter_name) DO NOTHING
	`, b.tableName)
	if _, err := b.db.ExecContext(ctx, seed, terminalID, counterName); err != nil {
		return 0, fmt.Errorf("seed counter row: %w", err)
	}

	incr := fmt.Sprintf(`
		UPDATE %s
		SET value = value + 1
		WHERE terminal_id = $1 AND counter_name = $2
		RETURNING value
	`, b.tableName)

	var next int64
	if err := b.db.QueryRowContext(ctx, incr, terminalID, counterName).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocate counter: %w", err)
	}
	return next, nil
}

func (b *PostgresBackend) Close() error {
	if !b.ownsDB {
		return nil
	}
	return b.db.Close()
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}
