package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/unidesk/uniadmin/internal/services"
	"github.com/unidesk/uniadmin/internal/validation"
	"github.com/unidesk/uniadmin/pkg/logger"
	"github.com/unidesk/uniadmin/pkg/middleware"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

// writeError maps err to its HTTP status. Internal errors are logged and
// reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperrors.Classify(err)
	msg := err.Error()
	if kind.Status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		msg = "internal server error"
	}
	writeJSON(w, kind.Status, errorResponse{Error: msg, Code: kind.Code})
}

// actorFromRequest turns the session claims into a service actor.
func actorFromRequest(r *http.Request) (*services.Actor, error) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return nil, fmt.Errorf("no session: %w", apperrors.ErrUnauthenticated)
	}
	return services.NewActor(claims.UserID, claims.Role, claims.AdminType)
}

// decodeBody validates the request body against schema and decodes it into dst.
func decodeBody(r *http.Request, v *validation.Validator, schema string, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("request body too large: %w", apperrors.ErrValidation)
	}
	if len(body) == 0 {
		return fmt.Errorf("request body is required: %w", apperrors.ErrValidation)
	}
	if err := v.Validate(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("field %s has the wrong type: %w", typeErr.Field, apperrors.ErrValidation)
		}
		return fmt.Errorf("invalid request payload: %w", apperrors.ErrValidation)
	}
	return nil
}
