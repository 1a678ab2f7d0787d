package database

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS labeled_products (
		id                BIGSERIAL PRIMARY KEY,
		sku               VARCHAR(100) NOT NULL,
		title             TEXT NOT NULL,
		image             TEXT,
		url               TEXT,
		platform          VARCHAR(50) NOT NULL,
		connect           VARCHAR(100) NOT NULL,
		price             NUMERIC(12, 2) NOT NULL DEFAULT 0,
		uncertainty_level SMALLINT NULL CHECK (uncertainty_level BETWEEN 1 AND 100),
		query             TEXT,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_labeled_products_connect ON labeled_products (connect)`,
	`CREATE TABLE IF NOT EXISTS momo_products (
		id         BIGSERIAL PRIMARY KEY,
		sku        VARCHAR(100) NOT NULL UNIQUE,
		title      TEXT NOT NULL,
		image      TEXT,
		url        TEXT,
		platform   VARCHAR(50) NOT NULL,
		connect    VARCHAR(100) NOT NULL,
		price      NUMERIC(12, 2) NOT NULL DEFAULT 0,
		num        INTEGER NOT NULL DEFAULT 0,
		query      TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS pchome_products (
		id         BIGSERIAL PRIMARY KEY,
		sku        VARCHAR(100) UNIQUE,
		title      TEXT,
		image      TEXT,
		url        TEXT,
		platform   VARCHAR(50),
		connect    VARCHAR(100) NOT NULL DEFAULT '',
		price      NUMERIC(12, 2),
		query      TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_event (
		id             UUID PRIMARY KEY,
		aggregate_type VARCHAR(50) NOT NULL,
		aggregate_id   VARCHAR(100) NOT NULL,
		event_type     VARCHAR(50) NOT NULL,
		payload        JSONB NOT NULL,
		target_stream  VARCHAR(100) NOT NULL,
		status         VARCHAR(20) NOT NULL DEFAULT 'pending',
		retry_count    INTEGER NOT NULL DEFAULT 0,
		error_message  TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		processed_at   TIMESTAMPTZ,
		next_retry_at  TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_event_pending ON outbox_event (status, next_retry_at)`,
}

// EnsureSchema creates the tables the labeling API writes to.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
