package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Module is a taught course unit students enroll in.
type Module struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code    string             `bson:"code" json:"code"`
	Title   string             `bson:"title" json:"title"`
	Credits int                `bson:"credits" json:"credits"`
}

// Enrollment is the join record between a student and a module.
// (student_id, module_id) is unique in the store.
type Enrollment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"studentId"`
	ModuleID  primitive.ObjectID `bson:"module_id" json:"moduleId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// ReconcileResult reports the membership changes applied by a reconciliation.
type ReconcileResult struct {
	Added   []primitive.ObjectID `json:"added"`
	Removed []primitive.ObjectID `json:"removed"`
}
