package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/unidesk/uniadmin/internal/metrics"
	"github.com/unidesk/uniadmin/internal/models"
	"github.com/unidesk/uniadmin/pkg/logger"
)

// NotificationService stores user notifications and fans them out to live
// listeners and, for decisions, to email.
type NotificationService struct {
	repo      NotificationStore
	users     UserStore
	publisher Publisher
	mailer    Mailer
	timeout   time.Duration

	wg sync.WaitGroup
}

// NewNotificationService wires the store with optional publisher and mailer
// (either may be nil). timeout bounds each asynchronous dispatch.
func NewNotificationService(repo NotificationStore, users UserStore, publisher Publisher, mailer Mailer, timeout time.Duration) *NotificationService {
	return &NotificationService{
		repo:      repo,
		users:     users,
		publisher: publisher,
		mailer:    mailer,
		timeout:   timeout,
	}
}

// CreateNotification stores notif and pushes it to subscribers.
func (s *NotificationService) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.Read = false
	if err := s.repo.CreateNotification(ctx, notif); err != nil {
		return err
	}

	if s.publisher != nil {
		payload, err := json.Marshal(notif)
		if err == nil {
			err = s.publisher.Publish(ctx, notif.UserID.Hex(), payload)
		}
		if err != nil {
			logger.FromContext(ctx).WithError(err).WithField("user_id", notif.UserID.Hex()).Warn("Failed to publish notification")
		}
	}

	if s.mailer != nil && (notif.Type == models.NotificationSuccess || notif.Type == models.NotificationError) {
		s.sendEmail(ctx, notif)
	}
	return nil
}

func (s *NotificationService) sendEmail(ctx context.Context, notif *models.Notification) {
	user, err := s.users.GetUserByID(ctx, notif.UserID)
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("user_id", notif.UserID.Hex()).Warn("Failed to look up notification recipient")
		return
	}
	if err := s.mailer.SendEmail(user.Email, notif.Title, notif.Message); err != nil {
		logger.FromContext(ctx).WithError(err).WithField("user_id", notif.UserID.Hex()).Warn("Failed to email notification")
	}
}

// Dispatch creates notif on a background goroutine. The request context is
// detached so the work outlives the response; failures are logged and
// counted but never reach the caller.
func (s *NotificationService) Dispatch(ctx context.Context, notif *models.Notification) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		if err := s.CreateNotification(dctx, notif); err != nil {
			metrics.NotificationsDispatched.WithLabelValues("failed").Inc()
			logger.FromContext(ctx).WithError(err).WithFields(logrus.Fields{
				"user_id": notif.UserID.Hex(),
				"type":    notif.Type,
			}).Error("Failed to create notification")
			return
		}
		metrics.NotificationsDispatched.WithLabelValues("created").Inc()
	}()
}

// Wait blocks until every dispatched notification has finished.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

// GetUserNotifications returns all notifications for a user
func (s *NotificationService) GetUserNotifications(ctx context.Context, actor *Actor) ([]models.Notification, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repo.GetUserNotifications(ctx, actor.ID)
}

// MarkNotificationAsRead sets the "read" status of one of the actor's notifications
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, actor *Actor, notifID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	id, err := parseID("notification", notifID)
	if err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, id, actor.ID)
}

// DeleteNotification dismisses one of the actor's notifications
func (s *NotificationService) DeleteNotification(ctx context.Context, actor *Actor, notifID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	id, err := parseID("notification", notifID)
	if err != nil {
		return err
	}
	return s.repo.DeleteNotification(ctx, id, actor.ID)
}

// DeleteExpiredNotifications is run periodically by the scheduler.
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) error {
	n, err := s.repo.DeleteExpiredNotifications(ctx)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	logger.FromContext(ctx).WithField("deleted", n).Info("Expired notifications cleaned up")
	return nil
}
