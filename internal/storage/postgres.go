package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
)

// NewConnection opens a Postgres connection pool and verifies it
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Postgres shares device carts across a fleet from one table
type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgres creates the kv table if missing
func NewPostgres(ctx context.Context, db *sql.DB, logger *zap.Logger) (*Postgres, error) {
	query := `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		logger.Error("Failed to create kv table", zap.Error(err))
		return nil, err
	}
	return &Postgres{db: db, logger: logger}, nil
}

func (r *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
		SELECT value
		FROM kv_entries
		WHERE key = $1
	`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Failed to get kv entry", zap.String("key", key), zap.Error(err))
		return "", false, err
	}
	return value, true, nil
}

func (r *Postgres) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, key, value, time.Now())
	if err != nil {
		r.logger.Error("Failed to upsert kv entry", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *Postgres) Delete(ctx context.Context, key string) error {
	query := `
		DELETE FROM kv_entries
		WHERE key = $1
	`

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		r.logger.Error("Failed to delete kv entry", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *Postgres) Close() error {
	return r.db.Close()
}
