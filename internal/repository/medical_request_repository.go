package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/unidesk/uniadmin/internal/models"
	"github.com/unidesk/uniadmin/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MedicalRequestRepository handles persistence of medical-leave requests.
type MedicalRequestRepository struct {
	collection *mongo.Collection
}

// NewMedicalRequestRepository creates a repository bound to db.
func NewMedicalRequestRepository(db *mongo.Database) *MedicalRequestRepository {
	return &MedicalRequestRepository{
		collection: db.Collection("medical_requests"),
	}
}

// Create inserts a new request and assigns its ID.
func (r *MedicalRequestRepository) Create(ctx context.Context, req *models.MedicalRequest) (*models.MedicalRequest, error) {
	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Error("Failed to insert medical request")
		return nil, fmt.Errorf("failed to insert medical request: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	req.ID = insertedID

	logger.FromContext(ctx).WithField("medical_request_id", req.ID.Hex()).Info("Medical request created")
	return req, nil
}

// GetByID fetches a single request.
func (r *MedicalRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.MedicalRequest, error) {
	var req models.MedicalRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("medical request %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("medical_request_id", id.Hex()).Error("Failed to find medical request")
		return nil, fmt.Errorf("failed to find medical request: %w", err)
	}
	return &req, nil
}

// List returns requests matching filter, newest first.
func (r *MedicalRequestRepository) List(ctx context.Context, f models.MedicalRequestFilter) ([]models.MedicalRequest, error) {
	filter := bson.M{}
	if f.StudentID != nil {
		filter["student_id"] = *f.StudentID
	}
	if f.ForwardedTo != nil {
		filter["forwarded_to"] = *f.ForwardedTo
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Error("Failed to list medical requests")
		return nil, fmt.Errorf("failed to list medical requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.MedicalRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode medical requests: %w", err)
	}
	return requests, nil
}

// UpdateStatus applies a transition as one atomic document update. The
// filter includes the expected current status, so a request that moved on
// since it was read is reported as a conflict instead of being overwritten.
func (r *MedicalRequestRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from models.MedicalStatus, upd models.StatusUpdate) (*models.MedicalRequest, error) {
	set := bson.M{
		"status":     upd.Status,
		"decided_by": upd.DecidedBy,
		"updated_at": upd.UpdatedAt,
	}
	if upd.OfficerComments != "" {
		set["officer_comments"] = upd.OfficerComments
	}
	if upd.AdminComments != "" {
		set["admin_comments"] = upd.AdminComments
	}
	if upd.ForwardedTo != nil {
		set["forwarded_to"] = *upd.ForwardedTo
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.MedicalRequest
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return nil, fmt.Errorf("failed to check medical request: %w", countErr)
		}
		if n == 0 {
			return nil, fmt.Errorf("medical request %s: %w", id.Hex(), apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("medical request %s is no longer %s: %w", id.Hex(), from, apperrors.ErrConflict)
	}
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("medical_request_id", id.Hex()).Error("Failed to update medical request status")
		return nil, fmt.Errorf("failed to update medical request: %w", err)
	}

	logger.FromContext(ctx).WithFields(map[string]interface{}{
		"medical_request_id": id.Hex(),
		"from":               from,
		"to":                 upd.Status,
	}).Info("Medical request status updated")
	return &updated, nil
}
