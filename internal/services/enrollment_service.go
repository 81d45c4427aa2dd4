package services

import (
	"context"
	"fmt"

	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/unidesk/uniadmin/internal/metrics"
	"github.com/unidesk/uniadmin/internal/models"
	"github.com/unidesk/uniadmin/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentService keeps a student's module memberships in line with a
// requested target set.
type EnrollmentService struct {
	repo     EnrollmentStore
	modules  ModuleStore
	users    UserStore
	notifier Notifier
}

func NewEnrollmentService(repo EnrollmentStore, modules ModuleStore, users UserStore, notifier Notifier) *EnrollmentService {
	return &EnrollmentService{repo: repo, modules: modules, users: users, notifier: notifier}
}

// diffModules returns target-current and current-target, preserving input order.
func diffModules(current, target []primitive.ObjectID) (toAdd, toRemove []primitive.ObjectID) {
	inCurrent := make(map[primitive.ObjectID]bool, len(current))
	for _, id := range current {
		inCurrent[id] = true
	}
	inTarget := make(map[primitive.ObjectID]bool, len(target))
	for _, id := range target {
		inTarget[id] = true
	}

	for _, id := range target {
		if !inCurrent[id] {
			toAdd = append(toAdd, id)
		}
	}
	for _, id := range current {
		if !inTarget[id] {
			toRemove = append(toRemove, id)
		}
	}
	return toAdd, toRemove
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Reconcile removes the student's memberships missing from target and adds
// the ones not yet present. The delete and insert are separate writes; a
// failure between them leaves the removals applied, and a retry with the
// same target finishes the job.
func (s *EnrollmentService) Reconcile(ctx context.Context, studentID primitive.ObjectID, target []primitive.ObjectID) (*models.ReconcileResult, error) {
	target = dedupe(target)

	existing, err := s.modules.ExistingIDs(ctx, target)
	if err != nil {
		return nil, err
	}
	if len(existing) != len(target) {
		known := make(map[primitive.ObjectID]bool, len(existing))
		for _, id := range existing {
			known[id] = true
		}
		for _, id := range target {
			if !known[id] {
				return nil, fmt.Errorf("module %s does not exist: %w", id.Hex(), apperrors.ErrValidation)
			}
		}
	}

	current, err := s.repo.ModuleIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}
	toAdd, toRemove := diffModules(current, target)

	result := &models.ReconcileResult{
		Added:   []primitive.ObjectID{},
		Removed: []primitive.ObjectID{},
	}
	if len(toRemove) > 0 {
		if _, err := s.repo.RemoveModules(ctx, studentID, toRemove); err != nil {
			return nil, err
		}
		result.Removed = toRemove
		metrics.EnrollmentChanges.WithLabelValues("removed").Add(float64(len(toRemove)))
	}
	if len(toAdd) > 0 {
		if _, err := s.repo.AddModules(ctx, studentID, toAdd); err != nil {
			return nil, err
		}
		result.Added = toAdd
		metrics.EnrollmentChanges.WithLabelValues("added").Add(float64(len(toAdd)))
	}

	logger.FromContext(ctx).WithFields(map[string]interface{}{
		"student_id": studentID.Hex(),
		"added":      len(result.Added),
		"removed":    len(result.Removed),
	}).Info("Enrollments reconciled")
	return result, nil
}

// ReconcileFor applies a target set on behalf of actor. An empty studentHex
// means the actor's own enrollments, which only students have. Admins may
// change any student's, and the student is told when they do.
func (s *EnrollmentService) ReconcileFor(ctx context.Context, actor *Actor, studentHex string, moduleHexes []string) (*models.ReconcileResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	studentID := actor.ID
	if studentHex != "" {
		id, err := parseID("student", studentHex)
		if err != nil {
			return nil, err
		}
		studentID = id
	}
	switch {
	case actor.IsStudent() && studentID == actor.ID:
	case actor.IsAdmin() && studentHex != "":
	default:
		return nil, fmt.Errorf("role %s cannot change enrollments of %s: %w", actor.Role, studentID.Hex(), apperrors.ErrUnauthorized)
	}
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}

	target := make([]primitive.ObjectID, 0, len(moduleHexes))
	for _, hex := range moduleHexes {
		id, err := parseID("module", hex)
		if err != nil {
			return nil, err
		}
		target = append(target, id)
	}

	result, err := s.Reconcile(ctx, studentID, target)
	if err != nil {
		return nil, err
	}

	if studentID != actor.ID && len(result.Added)+len(result.Removed) > 0 {
		s.notifier.Dispatch(ctx, &models.Notification{
			UserID:  studentID,
			Type:    models.NotificationInfo,
			Title:   "Enrollments updated",
			Message: fmt.Sprintf("Your module enrollments were updated: %d added, %d removed.", len(result.Added), len(result.Removed)),
		})
	}
	return result, nil
}

// requireStudent fails with NotFound for an unknown id and Validation when
// the user is not a student.
func (s *EnrollmentService) requireStudent(ctx context.Context, id primitive.ObjectID) error {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role != models.RoleStudent {
		return fmt.Errorf("user %s is a %s, not a student: %w", id.Hex(), user.Role, apperrors.ErrValidation)
	}
	return nil
}

// ModulesFor lists the modules a student is enrolled in.
func (s *EnrollmentService) ModulesFor(ctx context.Context, actor *Actor, studentHex string) ([]primitive.ObjectID, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	studentID := actor.ID
	if studentHex != "" {
		id, err := parseID("student", studentHex)
		if err != nil {
			return nil, err
		}
		studentID = id
	}
	if studentID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("enrollments of %s: %w", studentID.Hex(), apperrors.ErrUnauthorized)
	}

	ids, err := s.repo.ModuleIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return ids, nil
}
