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

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceUser struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceSubscription *ServiceSubscription
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
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

	serviceSubscription, err := do.Invoke[*ServiceSubscription](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, redisDB, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceSubscription}, nil
}

func (service *ServiceUser) FindOrCreateUser(ctx context.Context, userAuth *models.UserFromAuth) (*models.User, error) {
	if userAuth == nil {
		return nil, errors.New("userAuth is nil")
	}

	if userAuth.ID != "" {
		user, err := datastore.FindUserByID(ctx, service.readonlyPostgresDB, userAuth.ID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	user, err := datastore.FindUserByEmail(ctx, service.readonlyPostgresDB, userAuth.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now()
	user = &models.User{
		ID:        uuid.NewString(),
		Email:     userAuth.Email,
		Name:      userAuth.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := datastore.CreateUser(ctx, service.postgresDB, user); err != nil {
		return nil, err
	}

	return user, nil
}

// BalanceSnapshot serves the dashboard header: boost counters plus plan, read
// from the msgpack redis blob when fresh, rebuilt from Postgres otherwise.
func (service *ServiceUser) BalanceSnapshot(ctx context.Context, user *models.User) (*models.BalanceSnapshot, error) {
	snapshot, err := redis_store.GetBalanceSnapshot(ctx, service.redisDB, user.ID)
	if err == nil {
		return snapshot, nil
	}
	if err != redis.Nil {
		log.Println(err)
	}

	credit, err := datastore.GetUserBoostCredit(ctx, service.readonlyPostgresDB, user.ID)
	if err != nil {
		return nil, err
	}

	sub, err := service.serviceSubscription.GetSubscription(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	snapshot = &models.BalanceSnapshot{
		EnVedette:   credit.AvailableEnVedette,
		Visibilite:  credit.AvailableVisibilite,
		PlanType:    sub.PlanType,
		RefreshedAt: time.Now(),
	}

	if err := redis_store.SetBalanceSnapshot(ctx, service.redisDB, user.ID, snapshot); err != nil {
		log.Println(err)
	}

	return snapshot, nil
}
