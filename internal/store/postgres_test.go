package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostgresLifecycle(t *testing.T) {
	databaseURL := os.Getenv("ATSSCAN_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("ATSSCAN_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := NewPostgresPool(ctx, databaseURL)
	require.NoError(t, err)

	pg := NewPostgres(pool)
	t.Cleanup(pg.Close)
	require.NoError(t, pg.EnsureSchema(ctx))

	exerciseStore(t, pg)
}
