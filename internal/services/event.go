package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"vitrine/internal/datastore"
	"vitrine/internal/models"
	"vitrine/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceEvent struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceEvent(container *do.Injector) (*ServiceEvent, error) {
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

	return &ServiceEvent{container, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

func (service *ServiceEvent) CreateEvent(ctx context.Context, user *models.User, event *models.Event) (*models.Event, error) {
	_, err := datastore.FindCommerceByID(ctx, service.readonlyPostgresDB, user.ID, event.CommerceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommerceNotOwned
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	event.ID = uuid.NewString()
	event.UserID = user.ID
	event.Boosted = false
	event.BoostType = nil
	event.BoostedAt = nil
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := datastore.InsertEvent(ctx, service.postgresDB, event); err != nil {
		return nil, err
	}

	if err := service.cache.Delete(ctx, DBKeyUserEvents(user.ID)); err != nil {
		log.Println(err)
	}

	return event, nil
}

func (service *ServiceEvent) GetEvent(ctx context.Context, user *models.User, id string) (*models.Event, error) {
	return datastore.FindEventByID(ctx, service.readonlyPostgresDB, user.ID, id)
}

func (service *ServiceEvent) ListEvents(ctx context.Context, user *models.User) ([]*models.Event, error) {
	callback := func() ([]*models.Event, error) {
		return datastore.ListEventsByUser(ctx, service.readonlyPostgresDB, user.ID)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserEvents(user.ID), CACHE_TTL_1_MIN, callback)
}
