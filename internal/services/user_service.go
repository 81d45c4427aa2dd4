package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/unidesk/uniadmin/internal/models"
	"github.com/unidesk/uniadmin/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minPasswordLength = 8

// UserService is the user directory: accounts, credentials and identity.
type UserService struct {
	repo UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// CreateUserInput is what an admin supplies to open an account.
type CreateUserInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	AdminType string `json:"adminType,omitempty"`
}

// CreateUser validates and stores a new account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)

	if name == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", apperrors.ErrValidation)
	}
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("invalid email format: %w", apperrors.ErrValidation)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, apperrors.ErrValidation)
	}
	if !models.ValidRole(in.Role) {
		return nil, fmt.Errorf("unknown role %q: %w", in.Role, apperrors.ErrValidation)
	}

	adminType := ""
	if in.Role == models.RoleAdmin {
		switch in.AdminType {
		case models.AdminTypeMedicalOfficer, models.AdminTypeRegistrar:
			adminType = in.AdminType
		case "":
			adminType = models.AdminTypeRegistrar
		default:
			return nil, fmt.Errorf("unknown admin type %q: %w", in.AdminType, apperrors.ErrValidation)
		}
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, &models.User{
		Name:           name,
		Email:          email,
		HashedPassword: string(hashedPwd),
		Role:           in.Role,
		AdminType:      adminType,
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"userID": user.ID.Hex(),
		"role":   user.Role,
	}).Info("User created")
	return user, nil
}

// AuthenticateUser verifies the email and password and returns the user if credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		logger.FromContext(ctx).WithField("email", email).Warn("Login for unknown email")
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logger.FromContext(ctx).WithField("email", email).Warn("Invalid credentials")
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthenticated)
	}

	logger.FromContext(ctx).WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser returns the actor's own account.
func (s *UserService) GetUser(ctx context.Context, actor *Actor) (*models.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, actor.ID)
}

// EnsureAdmin creates the bootstrap admin account unless the email is taken.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password, adminType string) error {
	if email == "" {
		return nil
	}
	_, err := s.repo.GetUserByEmail(ctx, strings.ToLower(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	_, err = s.CreateUser(ctx, CreateUserInput{
		Name:      name,
		Email:     email,
		Password:  password,
		Role:      models.RoleAdmin,
		AdminType: adminType,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	logger.FromContext(ctx).WithField("email", email).Info("Bootstrap admin created")
	return nil
}
