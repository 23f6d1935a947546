package redis_store

import (
	"context"
	"fmt"
	"time"

	"vitrine/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const SNAPSHOT_TTL = 5 * time.Minute

func dbKeyBalanceSnapshot(userID string) string {
	return fmt.Sprintf("balance_snapshot:%s", userID)
}

// GetBalanceSnapshot reads the dashboard header blob. redis.Nil means the
// snapshot needs to be rebuilt from Postgres.
func GetBalanceSnapshot(ctx context.Context, rdb redis.UniversalClient, userID string) (*models.BalanceSnapshot, error) {
	b, err := rdb.Get(ctx, dbKeyBalanceSnapshot(userID)).Bytes()
	if err != nil {
		return nil, err
	}

	var snapshot models.BalanceSnapshot
	err = msgpack.Unmarshal(b, &snapshot)
	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func SetBalanceSnapshot(ctx context.Context, rdb redis.UniversalClient, userID string, snapshot *models.BalanceSnapshot) error {
	b, err := msgpack.Marshal(snapshot)
	if err != nil {
		return err
	}

	return rdb.Set(ctx, dbKeyBalanceSnapshot(userID), b, SNAPSHOT_TTL).Err()
}

// DeleteBalanceSnapshot is called whenever the ledger or the subscription row
// changes so the next dashboard load rebuilds from Postgres.
func DeleteBalanceSnapshot(ctx context.Context, rdb redis.UniversalClient, userID string) error {
	return rdb.Del(ctx, dbKeyBalanceSnapshot(userID)).Err()
}
