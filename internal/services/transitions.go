package services

import (
	"fmt"
	"strings"

	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/unidesk/uniadmin/internal/models"
)

// transitionRule describes who may take an edge of the medical-request
// lifecycle and where the actor's comment is recorded.
type transitionRule struct {
	allowed         func(a *Actor, req *models.MedicalRequest) bool
	officerComments bool
}

func medicalOfficer(a *Actor, _ *models.MedicalRequest) bool {
	return a.IsMedicalOfficer()
}

func addresseeLecturer(a *Actor, req *models.MedicalRequest) bool {
	return a.IsLecturer() && req.ForwardedTo != nil && *req.ForwardedTo == a.ID
}

// transitions is the complete edge set. approved_by_officer,
// approved_by_dept and rejected have no outgoing edges.
var transitions = map[models.MedicalStatus]map[models.MedicalStatus]transitionRule{
	models.StatusPending: {
		models.StatusApprovedByOfficer: {allowed: medicalOfficer, officerComments: true},
		models.StatusForwardedToDept:   {allowed: medicalOfficer, officerComments: true},
		models.StatusRejected:          {allowed: medicalOfficer, officerComments: true},
	},
	models.StatusForwardedToDept: {
		models.StatusApprovedByDept: {allowed: addresseeLecturer},
		models.StatusRejected:       {allowed: addresseeLecturer},
	},
}

// departmentTargets are the only statuses the lecturer-facing endpoint accepts.
var departmentTargets = map[models.MedicalStatus]bool{
	models.StatusApprovedByDept: true,
	models.StatusRejected:       true,
}

// IsTerminal reports whether no edge leaves s.
func IsTerminal(s models.MedicalStatus) bool {
	return len(transitions[s]) == 0
}

// mayDecide reports whether a is staff with authority over req: any
// medical officer, or the lecturer req was forwarded to. Such actors get
// InvalidTransition rather than Unauthorized for edges that do not exist.
func mayDecide(a *Actor, req *models.MedicalRequest) bool {
	return a.IsMedicalOfficer() || addresseeLecturer(a, req)
}

// checkTransition looks the edge up before anything is written.
func checkTransition(a *Actor, req *models.MedicalRequest, to models.MedicalStatus) (transitionRule, error) {
	rule, ok := transitions[req.Status][to]
	if !ok {
		if !mayDecide(a, req) {
			return transitionRule{}, fmt.Errorf("role %s cannot decide medical request %s: %w", a.Role, req.ID.Hex(), apperrors.ErrUnauthorized)
		}
		return transitionRule{}, fmt.Errorf("%s -> %s: %w", req.Status, to, apperrors.ErrInvalidTransition)
	}
	if !rule.allowed(a, req) {
		return transitionRule{}, fmt.Errorf("role %s cannot move %s -> %s: %w", a.Role, req.Status, to, apperrors.ErrUnauthorized)
	}
	return rule, nil
}

// notificationType maps a new status to the notification severity.
func notificationType(s models.MedicalStatus) string {
	switch {
	case strings.Contains(string(s), "approved"):
		return models.NotificationSuccess
	case s == models.StatusRejected:
		return models.NotificationError
	default:
		return models.NotificationInfo
	}
}

// outcomeNotification describes a transition to the owning student.
func outcomeNotification(req *models.MedicalRequest, comments string) *models.Notification {
	period := fmt.Sprintf("%s to %s", req.StartDate.Format("2 Jan 2006"), req.EndDate.Format("2 Jan 2006"))

	var title, message string
	switch req.Status {
	case models.StatusApprovedByOfficer:
		title = "Medical request approved"
		message = fmt.Sprintf("Your medical leave request for %s was approved by the medical officer.", period)
	case models.StatusForwardedToDept:
		title = "Medical request forwarded"
		message = fmt.Sprintf("Your medical leave request for %s was forwarded to your department for a decision.", period)
	case models.StatusApprovedByDept:
		title = "Medical request approved by department"
		message = fmt.Sprintf("Your medical leave request for %s was approved by your department.", period)
	case models.StatusRejected:
		title = "Medical request rejected"
		message = fmt.Sprintf("Your medical leave request for %s was rejected.", period)
	default:
		title = "Medical request updated"
		message = fmt.Sprintf("Your medical leave request for %s is now %s.", period, strings.ReplaceAll(string(req.Status), "_", " "))
	}
	if c := strings.TrimSpace(comments); c != "" {
		message += " Comments: " + c
	}

	id := req.ID
	return &models.Notification{
		UserID:   req.StudentID,
		Type:     notificationType(req.Status),
		Title:    title,
		Message:  message,
		TargetID: &id,
	}
}
