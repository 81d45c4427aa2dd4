package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/unidesk/uniadmin/internal/services"
	"github.com/unidesk/uniadmin/internal/validation"
	jwtutil "github.com/unidesk/uniadmin/pkg/jwt"
)

// UserHandler handles login and account endpoints.
type UserHandler struct {
	Service     *services.UserService
	Validator   *validation.Validator
	JWTSecret   string
	TokenExpiry time.Duration
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, v *validation.Validator, jwtSecret string, tokenExpiry time.Duration) *UserHandler {
	return &UserHandler{
		Service:     service,
		Validator:   v,
		JWTSecret:   jwtSecret,
		TokenExpiry: tokenExpiry,
	}
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, h.Validator, validation.Login, &credentials); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, user.AdminType, h.JWTSecret, h.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		writeError(w, r, err)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetMeHandler returns the caller's account.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.GetUser(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// AdminCreateUserHandler opens an account. Mounted behind RequireRole("admin").
func (h *UserHandler) AdminCreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var in services.CreateUserInput
	if err := decodeBody(r, h.Validator, validation.CreateUser, &in); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
