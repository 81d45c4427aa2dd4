package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MedicalStatus is the lifecycle state of a medical-leave request.
type MedicalStatus string

const (
	StatusPending           MedicalStatus = "pending"
	StatusApprovedByOfficer MedicalStatus = "approved_by_officer"
	StatusForwardedToDept   MedicalStatus = "forwarded_to_dept"
	StatusApprovedByDept    MedicalStatus = "approved_by_dept"
	StatusRejected          MedicalStatus = "rejected"
)

// Valid reports whether s names a known status.
func (s MedicalStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApprovedByOfficer, StatusForwardedToDept, StatusApprovedByDept, StatusRejected:
		return true
	}
	return false
}

// MedicalRequest is a student's medical-leave request. Reason and dates are
// fixed at creation; only the transition fields change afterwards.
type MedicalRequest struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID       primitive.ObjectID  `bson:"student_id" json:"student"`
	Status          MedicalStatus       `bson:"status" json:"status"`
	Reason          string              `bson:"reason" json:"reason"`
	StartDate       time.Time           `bson:"start_date" json:"startDate"`
	EndDate         time.Time           `bson:"end_date" json:"endDate"`
	CertificateRef  string              `bson:"certificate_ref,omitempty" json:"certificateRef,omitempty"`
	OfficerComments string              `bson:"officer_comments,omitempty" json:"officerComments,omitempty"`
	AdminComments   string              `bson:"admin_comments,omitempty" json:"adminComments,omitempty"`
	ForwardedTo     *primitive.ObjectID `bson:"forwarded_to,omitempty" json:"forwardedTo,omitempty"`
	DecidedBy       *primitive.ObjectID `bson:"decided_by,omitempty" json:"decidedBy,omitempty"`
	CreatedAt       time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updated_at" json:"updatedAt"`
}

// MedicalRequestView is a request with its owner populated. The Student
// field shadows the embedded owner id in JSON output.
type MedicalRequestView struct {
	MedicalRequest
	Student *PublicUser `json:"student"`
}

// MedicalRequestFilter narrows a listing. Nil/empty fields are ignored.
type MedicalRequestFilter struct {
	StudentID   *primitive.ObjectID
	ForwardedTo *primitive.ObjectID
	Status      MedicalStatus
}

// StatusUpdate is the set of fields written by a single transition.
type StatusUpdate struct {
	Status          MedicalStatus
	OfficerComments string
	AdminComments   string
	ForwardedTo     *primitive.ObjectID
	DecidedBy       primitive.ObjectID
	UpdatedAt       time.Time
}
