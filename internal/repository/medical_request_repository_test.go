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

func medicalDoc(id, student primitive.ObjectID, status models.MedicalStatus) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "student_id", Value: student},
		{Key: "status", Value: string(status)},
		{Key: "reason", Value: "influenza"},
		{Key: "start_date", Value: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Key: "end_date", Value: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)},
	}
}

func TestMedicalRequestRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewMedicalRequestRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		req, err := repo.Create(ctx, &models.MedicalRequest{
			ID:        primitive.NewObjectID(),
			StudentID: primitive.NewObjectID(),
			Status:    models.StatusPending,
			Reason:    "influenza",
		})
		require.NoError(mt, err)
		assert.False(mt, req.ID.IsZero())
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewMedicalRequestRepository(mt.DB)
		id, student := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.medical_requests", mtest.FirstBatch, medicalDoc(id, student, models.StatusPending)))

		req, err := repo.GetByID(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, id, req.ID)
		assert.Equal(mt, student, req.StudentID)
		assert.Equal(mt, models.StatusPending, req.Status)
		assert.Equal(mt, "influenza", req.Reason)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		repo := NewMedicalRequestRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.medical_requests", mtest.FirstBatch))

		_, err := repo.GetByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewMedicalRequestRepository(mt.DB)
		student := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.medical_requests", mtest.FirstBatch,
			medicalDoc(primitive.NewObjectID(), student, models.StatusPending),
			medicalDoc(primitive.NewObjectID(), student, models.StatusRejected),
		))

		reqs, err := repo.List(ctx, models.MedicalRequestFilter{StudentID: &student})
		require.NoError(mt, err)
		assert.Len(mt, reqs, 2)
	})

	mt.Run("update status", func(mt *mtest.T) {
		repo := NewMedicalRequestRepository(mt.DB)
		id, student, lecturer := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		doc := append(medicalDoc(id, student, models.StatusForwardedToDept), bson.E{Key: "forwarded_to", Value: lecturer})
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: doc}})

		updated, err := repo.UpdateStatus(ctx, id, models.StatusPending, models.StatusUpdate{
			Status:      models.StatusForwardedToDept,
			ForwardedTo: &lecturer,
			DecidedBy:   primitive.NewObjectID(),
			UpdatedAt:   time.Now(),
		})
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusForwardedToDept, updated.Status)
		require.NotNil(mt, updated.ForwardedTo)
		assert.Equal(mt, lecturer, *updated.ForwardedTo)
	})

	mt.Run("update status on moved record is a conflict", func(mt *mtest.T) {
		repo := NewMedicalRequestRepository(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, "db.medical_requests", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
		)

		_, err := repo.UpdateStatus(ctx, primitive.NewObjectID(), models.StatusPending, models.StatusUpdate{Status: models.StatusRejected})
		assert.ErrorIs(mt, err, apperrors.ErrConflict)
	})

	mt.Run("update status on missing record", func(mt *mtest.T) {
		repo := NewMedicalRequestRepository(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, "db.medical_requests", mtest.FirstBatch),
		)

		_, err := repo.UpdateStatus(ctx, primitive.NewObjectID(), models.StatusPending, models.StatusUpdate{Status: models.StatusRejected})
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})
}
