package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"vitrine/internal/datastore"
	"vitrine/internal/datastore/redis_store"
	"vitrine/internal/models"
	"vitrine/internal/pkg/caching"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	stripesub "github.com/stripe/stripe-go/v82/subscription"
	"github.com/uptrace/bun"
)

type ServiceSubscription struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceSubscription(container *do.Injector) (*ServiceSubscription, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	return &ServiceSubscription{container, redisDB, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

// GetSubscription returns the stored row, or the free default when the user
// never subscribed.
func (service *ServiceSubscription) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	callback := func() (*models.Subscription, error) {
		sub, err := datastore.GetSubscriptionByUserID(ctx, service.readonlyPostgresDB, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Subscription{
				UserID:   userID,
				PlanType: models.PlanTypeFree,
				Status:   models.SubscriptionStatusInactive,
			}, nil
		}
		if err != nil {
			return nil, err
		}
		return sub, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserSubscription(userID), CACHE_TTL_5_MINS, callback)
}

// Downgrade is the one plan transition a user may trigger directly. The
// gateway subscription is cancelled first; the row flips to free even if the
// deletion webhook arrives later (it is idempotent on an already-free row).
func (service *ServiceSubscription) Downgrade(ctx context.Context, user *models.User) error {
	current, err := datastore.GetSubscriptionByUserID(ctx, service.postgresDB, user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	if current.StripeSubscriptionID != nil && *current.StripeSubscriptionID != "" {
		if _, err := stripesub.Cancel(*current.StripeSubscriptionID, nil); err != nil {
			return err
		}
	}

	now := time.Now()
	downgraded := &models.Subscription{
		UserID:           user.ID,
		PlanType:         models.PlanTypeFree,
		Status:           models.SubscriptionStatusInactive,
		StripeCustomerID: current.StripeCustomerID,
		EndsAt:           &now,
		UpdatedAt:        now,
	}
	if err := datastore.UpsertSubscription(ctx, service.postgresDB, downgraded); err != nil {
		return err
	}

	if err := service.cache.Delete(ctx, DBKeyUserSubscription(user.ID)); err != nil {
		log.Println(err)
	}
	if err := redis_store.DeleteBalanceSnapshot(ctx, service.redisDB, user.ID); err != nil && err != redis.Nil {
		log.Println(err)
	}

	return nil
}
