package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/unidesk/uniadmin/internal/models"
	"github.com/unidesk/uniadmin/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
}

// NewNotificationRepository stores notifications that expire after ttl.
func NewNotificationRepository(db *mongo.Database, ttl time.Duration) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
		ttl:        ttl,
	}
}

// CreateNotification inserts a new notification
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(r.ttl)

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Error("Failed to insert notification")
		return fmt.Errorf("failed to create notification: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		notif.ID = id
	}
	return nil
}

// GetUserNotifications returns all unexpired notifications for a user
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	filter := bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// MarkAsRead sets Read on a notification owned by userID.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// DeleteNotification deletes a notification owned by userID.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("notification %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// DeleteExpiredNotifications removes notifications whose expiry has passed.
func (r *NotificationRepository) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	filter := bson.M{"expires_at": bson.M{"$lte": time.Now()}}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	logger.FromContext(ctx).Infof("Deleted %d expired notifications", result.DeletedCount)
	return result.DeletedCount, nil
}
