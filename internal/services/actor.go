package services

import (
	"fmt"

	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/unidesk/uniadmin/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID        primitive.ObjectID
	Role      string
	AdminType string
}

// NewActor builds an actor from session values.
func NewActor(userID, role, adminType string) (*Actor, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("session user id %q: %w", userID, apperrors.ErrUnauthenticated)
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("session role %q: %w", role, apperrors.ErrUnauthenticated)
	}
	return &Actor{ID: id, Role: role, AdminType: adminType}, nil
}

func (a *Actor) IsStudent() bool  { return a.Role == models.RoleStudent }
func (a *Actor) IsLecturer() bool { return a.Role == models.RoleLecturer }
func (a *Actor) IsAdmin() bool    { return a.Role == models.RoleAdmin }

func (a *Actor) IsMedicalOfficer() bool {
	return a.Role == models.RoleAdmin && a.AdminType == models.AdminTypeMedicalOfficer
}

func requireActor(a *Actor) error {
	if a == nil || a.ID.IsZero() {
		return fmt.Errorf("no session: %w", apperrors.ErrUnauthenticated)
	}
	return nil
}

func parseID(kind, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid %s id %q: %w", kind, hex, apperrors.ErrValidation)
	}
	return id, nil
}
