package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/unidesk/uniadmin/internal/metrics"
	"github.com/unidesk/uniadmin/internal/models"
	"github.com/unidesk/uniadmin/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MedicalService implements the medical-leave request workflow.
type MedicalService struct {
	repo     MedicalRequestStore
	users    UserStore
	notifier Notifier
}

// NewMedicalService creates a new instance of MedicalService.
func NewMedicalService(repo MedicalRequestStore, users UserStore, notifier Notifier) *MedicalService {
	return &MedicalService{
		repo:     repo,
		users:    users,
		notifier: notifier,
	}
}

// CreateMedicalRequestInput is the student-supplied part of a new request.
type CreateMedicalRequestInput struct {
	Reason         string `json:"reason"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	CertificateRef string `json:"certificateRef,omitempty"`
}

// ListMedicalRequestsQuery carries the optional list filters.
type ListMedicalRequestsQuery struct {
	StudentID string
	Status    string
	Forwarded bool
}

// TransitionRequest asks for a status change on one request.
type TransitionRequest struct {
	ID          string
	Status      string
	Comments    string
	ForwardedTo string
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(field, value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s must be a date (YYYY-MM-DD or RFC 3339): %w", field, apperrors.ErrValidation)
}

// Create files a new pending request owned by the calling student.
func (s *MedicalService) Create(ctx context.Context, actor *Actor, in CreateMedicalRequestInput) (*models.MedicalRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsStudent() {
		return nil, fmt.Errorf("only students file medical requests: %w", apperrors.ErrUnauthorized)
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("reason is required: %w", apperrors.ErrValidation)
	}
	start, err := parseDate("startDate", in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("endDate", in.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("endDate is before startDate: %w", apperrors.ErrValidation)
	}

	now := time.Now()
	req := &models.MedicalRequest{
		StudentID:      actor.ID,
		Status:         models.StatusPending,
		Reason:         reason,
		StartDate:      start,
		EndDate:        end,
		CertificateRef: strings.TrimSpace(in.CertificateRef),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(map[string]interface{}{
		"medical_request_id": created.ID.Hex(),
		"student_id":         actor.ID.Hex(),
	}).Info("Medical request filed")
	return created, nil
}

// List returns the requests visible to actor with owners populated.
// Students see their own, lecturers those routed to them, admins all.
func (s *MedicalService) List(ctx context.Context, actor *Actor, q ListMedicalRequestsQuery) ([]models.MedicalRequestView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var filter models.MedicalRequestFilter
	if q.Status != "" {
		status := models.MedicalStatus(q.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("unknown status %q: %w", q.Status, apperrors.ErrValidation)
		}
		filter.Status = status
	}
	if q.Forwarded {
		filter.Status = models.StatusForwardedToDept
	}

	switch {
	case actor.IsStudent():
		filter.StudentID = &actor.ID
	case actor.IsLecturer():
		filter.ForwardedTo = &actor.ID
	case actor.IsAdmin():
		if q.StudentID != "" {
			id, err := parseID("student", q.StudentID)
			if err != nil {
				return nil, err
			}
			filter.StudentID = &id
		}
	default:
		return nil, fmt.Errorf("role %s: %w", actor.Role, apperrors.ErrUnauthorized)
	}

	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, requests)
}

// Get returns one request to its owner, an admin, or the lecturer it was
// forwarded to.
func (s *MedicalService) Get(ctx context.Context, actor *Actor, id string) (*models.MedicalRequestView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	objID, err := parseID("medical request", id)
	if err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	visible := actor.IsAdmin() || req.StudentID == actor.ID || addresseeLecturer(actor, req)
	if !visible {
		return nil, fmt.Errorf("medical request %s: %w", id, apperrors.ErrUnauthorized)
	}

	views, err := s.populate(ctx, []models.MedicalRequest{*req})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *MedicalService) populate(ctx context.Context, requests []models.MedicalRequest) ([]models.MedicalRequestView, error) {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, r := range requests {
		if !seen[r.StudentID] {
			seen[r.StudentID] = true
			ids = append(ids, r.StudentID)
		}
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.PublicUser, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].Public()
	}

	views := make([]models.MedicalRequestView, 0, len(requests))
	for _, r := range requests {
		owner, ok := byID[r.StudentID]
		if !ok {
			owner = &models.PublicUser{ID: r.StudentID}
		}
		views = append(views, models.MedicalRequestView{MedicalRequest: r, Student: owner})
	}
	return views, nil
}

// Transition moves a request along one edge of the lifecycle. The edge and
// the actor are checked against the transition table before anything is
// written; the owner is notified once the update has been stored.
func (s *MedicalService) Transition(ctx context.Context, actor *Actor, tr TransitionRequest) (*models.MedicalRequest, error) {
	return s.record(s.transition(ctx, actor, tr, nil))
}

// DepartmentDecision is the lecturer-facing variant, limited to the final
// department outcomes. Targets outside that set are refused only once the
// actor and the request have been checked.
func (s *MedicalService) DepartmentDecision(ctx context.Context, actor *Actor, tr TransitionRequest) (*models.MedicalRequest, error) {
	return s.record(s.transition(ctx, actor, tr, departmentTargets))
}

func (s *MedicalService) record(updated *models.MedicalRequest, err error) (*models.MedicalRequest, error) {
	if err != nil {
		metrics.MedicalTransitionsRejected.WithLabelValues(apperrors.Classify(err).Code).Inc()
		return nil, err
	}
	return updated, nil
}

// transition applies tr. A non-nil allowed restricts the target statuses
// after the table check has passed.
func (s *MedicalService) transition(ctx context.Context, actor *Actor, tr TransitionRequest, allowed map[models.MedicalStatus]bool) (*models.MedicalRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	id, err := parseID("medical request", tr.ID)
	if err != nil {
		return nil, err
	}
	to := models.MedicalStatus(tr.Status)
	if !to.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", tr.Status, apperrors.ErrValidation)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rule, err := checkTransition(actor, current, to)
	if err != nil {
		logger.FromContext(ctx).WithFields(map[string]interface{}{
			"medical_request_id": tr.ID,
			"actor_id":           actor.ID.Hex(),
			"from":               current.Status,
			"to":                 to,
		}).WithError(err).Warn("Medical request transition refused")
		return nil, err
	}
	if allowed != nil && !allowed[to] {
		return nil, fmt.Errorf("department decisions cannot set %s: %w", to, apperrors.ErrInvalidTransition)
	}

	comments := strings.TrimSpace(tr.Comments)
	upd := models.StatusUpdate{
		Status:    to,
		DecidedBy: actor.ID,
		UpdatedAt: time.Now(),
	}
	if rule.officerComments {
		upd.OfficerComments = comments
	} else {
		upd.AdminComments = comments
	}

	forwardedTo := strings.TrimSpace(tr.ForwardedTo)
	switch {
	case to == models.StatusForwardedToDept:
		target, err := s.forwardTarget(ctx, forwardedTo)
		if err != nil {
			return nil, err
		}
		upd.ForwardedTo = &target
	case forwardedTo != "":
		return nil, fmt.Errorf("forwardedTo is only accepted when forwarding: %w", apperrors.ErrValidation)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, upd)
	if err != nil {
		return nil, err
	}
	metrics.MedicalTransitions.WithLabelValues(string(current.Status), string(to)).Inc()

	s.notifier.Dispatch(ctx, outcomeNotification(updated, comments))

	logger.FromContext(ctx).WithFields(map[string]interface{}{
		"medical_request_id": updated.ID.Hex(),
		"actor_id":           actor.ID.Hex(),
		"from":               current.Status,
		"to":                 updated.Status,
	}).Info("Medical request transitioned")
	return updated, nil
}

// forwardTarget resolves the lecturer a request is routed to.
func (s *MedicalService) forwardTarget(ctx context.Context, hex string) (primitive.ObjectID, error) {
	if hex == "" {
		return primitive.NilObjectID, fmt.Errorf("forwardedTo is required when forwarding: %w", apperrors.ErrValidation)
	}
	id, err := parseID("forwardedTo", hex)
	if err != nil {
		return primitive.NilObjectID, err
	}

	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return primitive.NilObjectID, fmt.Errorf("forwardedTo %s is not a known user: %w", hex, apperrors.ErrValidation)
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	if user.Role != models.RoleLecturer {
		return primitive.NilObjectID, fmt.Errorf("forwardedTo %s is not a lecturer: %w", hex, apperrors.ErrValidation)
	}
	return id, nil
}
