// Package store persists received video notifications in PostgreSQL.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daggieblanqx/youtube-notification/internal/config"
)

// NewPool creates a PostgreSQL connection pool from the daemon
// configuration and verifies connectivity.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// schema is the DDL for the notifications table. CreateSchema applies it
// idempotently so the daemon can bootstrap an empty database.
const schema = `
CREATE TABLE IF NOT EXISTS notifications (
	id            UUID PRIMARY KEY,
	video_id      TEXT NOT NULL,
	video_title   TEXT NOT NULL,
	video_link    TEXT NOT NULL,
	channel_id    TEXT NOT NULL,
	channel_name  TEXT NOT NULL DEFAULT '',
	channel_link  TEXT NOT NULL DEFAULT '',
	published     TEXT NOT NULL,
	updated       TEXT NOT NULL,
	received_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_notifications_video_id ON notifications (video_id);
CREATE INDEX IF NOT EXISTS idx_notifications_channel_id ON notifications (channel_id);
`

// CreateSchema creates the notifications table and its indexes if missing.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
