package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"vitrine/internal/datastore"
	"vitrine/internal/datastore/redis_store"
	"vitrine/internal/models"
	"vitrine/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceBoost struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceBoost(container *do.Injector) (*ServiceBoost, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceBoost{container, redisDB, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

// ApplyBoost spends one credit of boostType on the given content item. The
// content flag and the ledger decrement commit together or not at all; the
// per-user mutex keeps a double-click from burning two credits on benign
// retries (correctness does not depend on it).
func (service *ServiceBoost) ApplyBoost(ctx context.Context, user *models.User, contentKind string, contentID string, boostType string) error {
	mutex := service.rs.NewMutex(LockKeyUserBoost(user.ID))
	if err := mutex.Lock(); err != nil {
		return ErrBoostLock
	}
	//nolint:errcheck
	defer mutex.Unlock()

	err := service.applyBoost(ctx, user.ID, contentKind, contentID, boostType)
	if err != nil {
		return err
	}

	service.invalidateUserCaches(ctx, user.ID, contentKind)
	return nil
}

func (service *ServiceBoost) applyBoost(ctx context.Context, userID string, contentKind string, contentID string, boostType string) error {
	if !models.ValidBoostType(boostType) {
		return datastore.ErrUnknownBoostType
	}
	if !models.ValidContentKind(contentKind) {
		return datastore.ErrUnknownContentKind
	}

	// fast-fail before touching the content row; the decrement below is the
	// authoritative check
	credit, err := datastore.GetUserBoostCredit(ctx, service.postgresDB, userID)
	if err != nil {
		return err
	}
	if credit.Available(boostType) < 1 {
		return datastore.ErrInsufficientCredit
	}

	return service.postgresDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := datastore.MarkContentBoosted(ctx, tx, contentKind, contentID, userID, boostType, time.Now())
		if err != nil {
			return err
		}

		err = datastore.ConsumeUserBoostCredit(ctx, tx, userID, boostType)
		if errors.Is(err, datastore.ErrInsufficientCredit) {
			// the credit drained between the read above and here; rollback
			// leaves the content row unboosted
			return err
		}
		if err != nil {
			log.Printf("boost: ledger decrement failed after content write, rolling back: user=%s content=%s/%s: %v", userID, contentKind, contentID, err)
			return fmt.Errorf("%w: %v", ErrLedgerUpdate, err)
		}

		return nil
	})
}

// RemoveBoost clears the boost state. The consumed credit is not refunded.
func (service *ServiceBoost) RemoveBoost(ctx context.Context, user *models.User, contentKind string, contentID string) error {
	if !models.ValidContentKind(contentKind) {
		return datastore.ErrUnknownContentKind
	}

	err := datastore.ClearContentBoost(ctx, service.postgresDB, contentKind, contentID, user.ID)
	if err != nil {
		return err
	}

	service.invalidateUserCaches(ctx, user.ID, contentKind)
	return nil
}

func (service *ServiceBoost) GetBalance(ctx context.Context, userID string) (*models.UserBoostCredit, error) {
	callback := func() (*models.UserBoostCredit, error) {
		return datastore.GetUserBoostCredit(ctx, service.readonlyPostgresDB, userID)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserBoostCredit(userID), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceBoost) invalidateUserCaches(ctx context.Context, userID string, contentKind string) {
	keys := []string{DBKeyUserBoostCredit(userID)}
	switch contentKind {
	case models.ContentKindOffer:
		keys = append(keys, DBKeyUserOffers(userID))
	case models.ContentKindEvent:
		keys = append(keys, DBKeyUserEvents(userID))
	case models.ContentKindCommerce:
		keys = append(keys, DBKeyUserCommerces(userID))
	}

	for _, key := range keys {
		if err := service.cache.Delete(ctx, key); err != nil {
			log.Println(err)
		}
	}

	if err := redis_store.DeleteBalanceSnapshot(ctx, service.redisDB, userID); err != nil && err != redis.Nil {
		log.Println(err)
	}
}
