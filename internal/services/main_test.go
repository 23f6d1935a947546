package services

import (
	"testing"

	"vitrine/internal/pkg/caching"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func setupTestDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db, mock
}

// setupTestRedis points at a closed port: cache invalidation failures are
// logged and swallowed, so the services under test keep working without a
// live Redis.
func setupTestRedis(t *testing.T) (redis.UniversalClient, caching.Cache) {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	c, err := caching.NewCacheRedis(rdb, false)
	require.NoError(t, err)

	return rdb, c
}
