package main

import (
	"context"
	"log"
	"time"

	"vitrine/internal/datastore"
	"vitrine/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

type OfferExpiryJob struct {
	Rs *redsync.Redsync
	Db *bun.DB
}

func NewOfferExpiryJob(rs *redsync.Redsync, db *bun.DB) *OfferExpiryJob {
	return &OfferExpiryJob{
		Rs: rs,
		Db: db,
	}
}

func (j *OfferExpiryJob) Start(cronRunner *cron.Cron) {
	timeline := configuredSchedule(j.Db, services.CONFIG_CRONJOB_TIME_OFFER_EXPIRY, services.DEFAULT_CRON_OFFER_EXPIRY)

	_, err := cronRunner.AddFunc(timeline, j.runScheduledTask)
	log.Println("Offer expiry cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline, err)
	j.runScheduledTask()
}

func (j *OfferExpiryJob) runScheduledTask() {
	ctx := context.Background()

	mutex := j.Rs.NewMutex(services.LockKeySweep("offer_expiry"))
	if err := mutex.Lock(); err != nil {
		log.Println("offer expiry sweep already running:", err)
		return
	}
	//nolint:errcheck
	defer mutex.Unlock()

	deactivated, err := datastore.DeactivateExpiredOffers(ctx, j.Db, time.Now())
	if err != nil {
		log.Println("deactivate expired offers failed:", err)
		return
	}
	if deactivated > 0 {
		log.Println("Deactivated", deactivated, "expired offers")
	}
}
