package services

import (
	"context"

	"github.com/unidesk/uniadmin/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces are satisfied by the Mongo repositories and are injected
// at construction so each service only sees the collections it uses.

type MedicalRequestStore interface {
	Create(ctx context.Context, req *models.MedicalRequest) (*models.MedicalRequest, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.MedicalRequest, error)
	List(ctx context.Context, filter models.MedicalRequestFilter) ([]models.MedicalRequest, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from models.MedicalStatus, upd models.StatusUpdate) (*models.MedicalRequest, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteNotification(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

type ModuleStore interface {
	ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)
}

type EnrollmentStore interface {
	ModuleIDs(ctx context.Context, studentID primitive.ObjectID) ([]primitive.ObjectID, error)
	RemoveModules(ctx context.Context, studentID primitive.ObjectID, moduleIDs []primitive.ObjectID) (int64, error)
	AddModules(ctx context.Context, studentID primitive.ObjectID, moduleIDs []primitive.ObjectID) (int64, error)
}

// Publisher pushes a freshly stored notification to live listeners.
type Publisher interface {
	Publish(ctx context.Context, userID string, payload []byte) error
}

// Mailer sends a plain-text email.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Notifier hands a notification off without waiting for it to be stored.
type Notifier interface {
	Dispatch(ctx context.Context, notif *models.Notification)
}
