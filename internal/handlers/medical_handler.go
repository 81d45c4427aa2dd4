package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/unidesk/uniadmin/internal/services"
	"github.com/unidesk/uniadmin/internal/validation"
)

// MedicalHandler serves the medical-leave request endpoints.
type MedicalHandler struct {
	Service   *services.MedicalService
	Validator *validation.Validator
}

func NewMedicalHandler(service *services.MedicalService, v *validation.Validator) *MedicalHandler {
	return &MedicalHandler{Service: service, Validator: v}
}

type adminTransitionBody struct {
	Status        string `json:"status"`
	AdminComments string `json:"adminComments"`
	ForwardedTo   string `json:"forwardedTo"`
}

type lecturerTransitionBody struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	AdminComments string `json:"adminComments"`
}

// GET /medical-requests?student=&status=&forwarded=true
func (h *MedicalHandler) ListMedicalRequestsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	requests, err := h.Service.List(r.Context(), actor, services.ListMedicalRequestsQuery{
		StudentID: q.Get("student"),
		Status:    q.Get("status"),
		Forwarded: q.Get("forwarded") == "true",
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// POST /medical-requests
func (h *MedicalHandler) CreateMedicalRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in services.CreateMedicalRequestInput
	if err := decodeBody(r, h.Validator, validation.CreateMedicalRequest, &in); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.Service.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GET /medical-requests/{id}
func (h *MedicalHandler) GetMedicalRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.Service.Get(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PATCH /medical-requests/{id}
func (h *MedicalHandler) AdminTransitionHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body adminTransitionBody
	if err := decodeBody(r, h.Validator, validation.AdminTransition, &body); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.Service.Transition(r.Context(), actor, services.TransitionRequest{
		ID:          mux.Vars(r)["id"],
		Status:      body.Status,
		Comments:    body.AdminComments,
		ForwardedTo: body.ForwardedTo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// PATCH /medical-requests
func (h *MedicalHandler) DepartmentDecisionHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body lecturerTransitionBody
	if err := decodeBody(r, h.Validator, validation.LecturerTransition, &body); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.Service.DepartmentDecision(r.Context(), actor, services.TransitionRequest{
		ID:       body.ID,
		Status:   body.Status,
		Comments: body.AdminComments,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
