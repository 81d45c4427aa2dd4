package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/unidesk/uniadmin/internal/services"
	"github.com/unidesk/uniadmin/internal/validation"
)

type EnrollmentHandler struct {
	Service   *services.EnrollmentService
	Validator *validation.Validator
}

func NewEnrollmentHandler(service *services.EnrollmentService, v *validation.Validator) *EnrollmentHandler {
	return &EnrollmentHandler{Service: service, Validator: v}
}

type enrollmentBody struct {
	Modules []string `json:"modules"`
}

// GET /enrollments
func (h *EnrollmentHandler) GetEnrollmentsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	modules, err := h.Service.ModulesFor(r.Context(), actor, "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"modules": modules})
}

// PUT /enrollments
func (h *EnrollmentHandler) ReconcileOwnHandler(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, "")
}

// PUT /admin/students/{id}/enrollments
func (h *EnrollmentHandler) ReconcileStudentHandler(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, mux.Vars(r)["id"])
}

func (h *EnrollmentHandler) reconcile(w http.ResponseWriter, r *http.Request, studentID string) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body enrollmentBody
	if err := decodeBody(r, h.Validator, validation.Enrollments, &body); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.Service.ReconcileFor(r.Context(), actor, studentID, body.Modules)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
