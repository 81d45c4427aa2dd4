package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unidesk/uniadmin/internal/models"
	"github.com/unidesk/uniadmin/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnrollmentRepository manages student/module join records.
type EnrollmentRepository struct {
	collection *mongo.Collection
}

func NewEnrollmentRepository(db *mongo.Database) *EnrollmentRepository {
	return &EnrollmentRepository{collection: db.Collection("enrollments")}
}

// ModuleIDs returns the modules a student is currently enrolled in.
func (r *EnrollmentRepository) ModuleIDs(ctx context.Context, studentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"module_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enrollments: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.Enrollment
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode enrollments: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ModuleID)
	}
	return ids, nil
}

// RemoveModules deletes the join records for moduleIDs.
func (r *EnrollmentRepository) RemoveModules(ctx context.Context, studentID primitive.ObjectID, moduleIDs []primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{
		"student_id": studentID,
		"module_id":  bson.M{"$in": moduleIDs},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to remove enrollments: %w", err)
	}
	return res.DeletedCount, nil
}

// AddModules inserts join records for moduleIDs. Rows rejected by the
// unique (student_id, module_id) index already exist and are not an error.
func (r *EnrollmentRepository) AddModules(ctx context.Context, studentID primitive.ObjectID, moduleIDs []primitive.ObjectID) (int64, error) {
	now := time.Now()
	docs := make([]interface{}, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		docs = append(docs, models.Enrollment{StudentID: studentID, ModuleID: id, CreatedAt: now})
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return int64(len(docs)), nil
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && onlyDuplicateKeys(bwe) {
		logger.FromContext(ctx).WithFields(map[string]interface{}{
			"student_id": studentID.Hex(),
			"duplicates": len(bwe.WriteErrors),
		}).Warn("Skipped existing enrollments")
		return int64(len(docs) - len(bwe.WriteErrors)), nil
	}
	return 0, fmt.Errorf("failed to add enrollments: %w", err)
}

func onlyDuplicateKeys(bwe mongo.BulkWriteException) bool {
	if bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			return false
		}
	}
	return true
}
