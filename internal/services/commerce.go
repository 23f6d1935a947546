package services

import (
	"context"
	"log"
	"time"

	"vitrine/internal/datastore"
	"vitrine/internal/models"
	"vitrine/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceCommerce struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceCommerce(container *do.Injector) (*ServiceCommerce, error) {
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

	return &ServiceCommerce{container, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

func (service *ServiceCommerce) CreateCommerce(ctx context.Context, user *models.User, commerce *models.Commerce) (*models.Commerce, error) {
	now := time.Now()
	commerce.ID = uuid.NewString()
	commerce.UserID = user.ID
	commerce.Boosted = false
	commerce.BoostType = nil
	commerce.BoostedAt = nil
	commerce.CreatedAt = now
	commerce.UpdatedAt = now

	if err := datastore.InsertCommerce(ctx, service.postgresDB, commerce); err != nil {
		return nil, err
	}

	if err := service.cache.Delete(ctx, DBKeyUserCommerces(user.ID)); err != nil {
		log.Println(err)
	}

	return commerce, nil
}

func (service *ServiceCommerce) GetCommerce(ctx context.Context, user *models.User, id string) (*models.Commerce, error) {
	return datastore.FindCommerceByID(ctx, service.readonlyPostgresDB, user.ID, id)
}

func (service *ServiceCommerce) ListCommerces(ctx context.Context, user *models.User) ([]*models.Commerce, error) {
	callback := func() ([]*models.Commerce, error) {
		return datastore.ListCommercesByUser(ctx, service.readonlyPostgresDB, user.ID)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserCommerces(user.ID), CACHE_TTL_1_MIN, callback)
}
