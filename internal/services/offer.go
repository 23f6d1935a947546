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

var ErrInvalidOfferDates = errors.New("offer end date before start date")
var ErrCommerceNotOwned = errors.New("commerce does not belong to user")

type ServiceOffer struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceOffer(container *do.Injector) (*ServiceOffer, error) {
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

	return &ServiceOffer{container, postgresDB, readonlyPostgresDB, cache, readonlyCache}, nil
}

func (service *ServiceOffer) CreateOffer(ctx context.Context, user *models.User, offer *models.Offer) (*models.Offer, error) {
	if offer.StartDate != nil && offer.EndDate != nil && offer.EndDate.Before(*offer.StartDate) {
		return nil, ErrInvalidOfferDates
	}

	_, err := datastore.FindCommerceByID(ctx, service.readonlyPostgresDB, user.ID, offer.CommerceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommerceNotOwned
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	offer.ID = uuid.NewString()
	offer.UserID = user.ID
	offer.IsActive = true
	offer.Boosted = false
	offer.BoostType = nil
	offer.BoostedAt = nil
	offer.CreatedAt = now
	offer.UpdatedAt = now

	if err := datastore.InsertOffer(ctx, service.postgresDB, offer); err != nil {
		return nil, err
	}

	if err := service.cache.Delete(ctx, DBKeyUserOffers(user.ID)); err != nil {
		log.Println(err)
	}

	return offer, nil
}

func (service *ServiceOffer) GetOffer(ctx context.Context, user *models.User, id string) (*models.Offer, error) {
	return datastore.FindOfferByID(ctx, service.readonlyPostgresDB, user.ID, id)
}

func (service *ServiceOffer) ListOffers(ctx context.Context, user *models.User) ([]*models.Offer, error) {
	callback := func() ([]*models.Offer, error) {
		return datastore.ListOffersByUser(ctx, service.readonlyPostgresDB, user.ID)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserOffers(user.ID), CACHE_TTL_1_MIN, callback)
}
