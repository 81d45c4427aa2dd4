package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ExpiredNotificationCleaner removes notifications past their expiry.
type ExpiredNotificationCleaner interface {
	DeleteExpiredNotifications(ctx context.Context) error
}

const cleanupTimeout = time.Minute

// StartNotificationCronJobs schedules the expired-notification cleanup on
// spec (standard cron syntax or a descriptor such as @daily) and starts
// the scheduler. Callers stop it with the returned cron's Stop.
func StartNotificationCronJobs(cleaner ExpiredNotificationCleaner, spec string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := cleaner.DeleteExpiredNotifications(ctx); err != nil {
			logrus.WithError(err).Error("DeleteExpiredNotifications failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}

	c.Start()
	return c, nil
}
