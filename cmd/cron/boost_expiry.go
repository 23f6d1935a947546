package main

import (
	"context"
	"log"
	"time"

	"vitrine/internal/datastore"
	"vitrine/internal/models"
	"vitrine/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

type BoostExpiryJob struct {
	Rs *redsync.Redsync
	Db *bun.DB
}

func NewBoostExpiryJob(rs *redsync.Redsync, db *bun.DB) *BoostExpiryJob {
	return &BoostExpiryJob{
		Rs: rs,
		Db: db,
	}
}

func (j *BoostExpiryJob) Start(cronRunner *cron.Cron) {
	timeline := configuredSchedule(j.Db, services.CONFIG_CRONJOB_TIME_BOOST_EXPIRY, services.DEFAULT_CRON_BOOST_EXPIRY)

	_, err := cronRunner.AddFunc(timeline, j.runScheduledTask)
	log.Println("Boost expiry cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline, err)
	j.runScheduledTask()
}

func (j *BoostExpiryJob) runScheduledTask() {
	ctx := context.Background()

	// only one replica sweeps at a time
	mutex := j.Rs.NewMutex(services.LockKeySweep("boost_expiry"))
	if err := mutex.Lock(); err != nil {
		log.Println("boost expiry sweep already running:", err)
		return
	}
	//nolint:errcheck
	defer mutex.Unlock()

	cutoff := time.Now().Add(-models.BoostDuration)
	log.Println("Start expiring boosts placed before:", cutoff.Format("2006-01-02 15:04:05"))

	for _, kind := range []string{models.ContentKindOffer, models.ContentKindEvent, models.ContentKindCommerce} {
		expired, err := datastore.ExpireBoostedContent(ctx, j.Db, kind, cutoff)
		if err != nil {
			log.Println("expire", kind, "failed:", err)
			continue
		}
		if expired > 0 {
			log.Println("Expired", expired, "boosted", kind, "rows")
		}
	}
}
