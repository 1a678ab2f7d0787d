package database

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the database named by TEST_DB_* and resets every
// table. Tests using it only run with INTEGRATION_TEST=true.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}

	port, _ := strconv.Atoi(getenv("TEST_DB_PORT", "5432"))
	ctx := context.Background()

	db, err := New(ctx, Config{
		Host:     getenv("TEST_DB_HOST", "localhost"),
		Port:     port,
		User:     getenv("TEST_DB_USER", "postgres"),
		Password: getenv("TEST_DB_PASSWORD", "postgres"),
		Database: getenv("TEST_DB_NAME", "product_compare_test"),
		MaxConns: 4,
	})
	require.NoError(t, err)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Exec(ctx, "TRUNCATE labeled_products, momo_products, pchome_products, outbox_event RESTART IDENTITY")
	require.NoError(t, err)

	t.Cleanup(db.Close)
	return db
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
