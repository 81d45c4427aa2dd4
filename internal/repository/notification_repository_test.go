package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/unidesk/uniadmin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestNotificationRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create sets expiry", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB, 48*time.Hour)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		n := &models.Notification{UserID: primitive.NewObjectID(), Type: models.NotificationInfo, Title: "t"}
		require.NoError(mt, repo.CreateNotification(ctx, n))
		assert.Equal(mt, 48*time.Hour, n.ExpiresAt.Sub(n.CreatedAt))
		assert.False(mt, n.ID.IsZero())
	})

	mt.Run("mark as read of someone else's notification", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB, time.Hour)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.MarkAsRead(ctx, primitive.NewObjectID(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("delete expired", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB, time.Hour)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 3}})

		n, err := repo.DeleteExpiredNotifications(ctx)
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)
	})
}
