package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unidesk/uniadmin/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationType(t *testing.T) {
	assert.Equal(t, models.NotificationSuccess, notificationType(models.StatusApprovedByOfficer))
	assert.Equal(t, models.NotificationSuccess, notificationType(models.StatusApprovedByDept))
	assert.Equal(t, models.NotificationError, notificationType(models.StatusRejected))
	assert.Equal(t, models.NotificationInfo, notificationType(models.StatusForwardedToDept))
	assert.Equal(t, models.NotificationInfo, notificationType(models.StatusPending))
}

func TestTransitionTableCommentFields(t *testing.T) {
	for to, rule := range transitions[models.StatusPending] {
		assert.True(t, rule.officerComments, to)
	}
	for to, rule := range transitions[models.StatusForwardedToDept] {
		assert.False(t, rule.officerComments, to)
		assert.True(t, departmentTargets[to], to)
	}
}

func TestOutcomeNotification(t *testing.T) {
	req := &models.MedicalRequest{
		ID:        primitive.NewObjectID(),
		StudentID: primitive.NewObjectID(),
		Status:    models.StatusRejected,
	}
	n := outcomeNotification(req, "  ")

	assert.Equal(t, req.StudentID, n.UserID)
	assert.Equal(t, models.NotificationError, n.Type)
	assert.Equal(t, "Medical request rejected", n.Title)
	assert.NotContains(t, n.Message, "Comments")
	assert.Equal(t, req.ID, *n.TargetID)
}
