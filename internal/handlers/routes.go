package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unidesk/uniadmin/internal/models"
	"github.com/unidesk/uniadmin/pkg/middleware"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	User         *UserHandler
	Medical      *MedicalHandler
	Enrollment   *EnrollmentHandler
	Notification *NotificationHandler
	Stream       *NotificationStreamHandler
	Health       *HealthHandler
}

// RegisterRoutes mounts every endpoint on router.
func RegisterRoutes(router *mux.Router, h *Handlers, jwtSecret string) {
	router.Use(middleware.LoggingMiddleware, middleware.MetricsMiddleware)

	router.HandleFunc("/healthz", h.Health.HealthzHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/users/login", h.User.LoginUserHandler).Methods("POST")
	router.HandleFunc("/ws/notifications", h.Stream.StreamHandler).Methods("GET")

	auth := middleware.AuthMiddleware(jwtSecret)

	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(auth)
	protectedUserRoutes.HandleFunc("/me", h.User.GetMeHandler).Methods("GET")

	medicalRoutes := router.PathPrefix("/medical-requests").Subrouter()
	medicalRoutes.Use(auth)
	medicalRoutes.HandleFunc("", h.Medical.ListMedicalRequestsHandler).Methods("GET")
	medicalRoutes.HandleFunc("", h.Medical.CreateMedicalRequestHandler).Methods("POST")
	medicalRoutes.HandleFunc("", h.Medical.DepartmentDecisionHandler).Methods("PATCH")
	medicalRoutes.HandleFunc("/{id}", h.Medical.GetMedicalRequestHandler).Methods("GET")
	medicalRoutes.Handle("/{id}", middleware.RequireRole(models.RoleAdmin)(
		http.HandlerFunc(h.Medical.AdminTransitionHandler),
	)).Methods("PATCH")

	enrollmentRoutes := router.PathPrefix("/enrollments").Subrouter()
	enrollmentRoutes.Use(auth)
	enrollmentRoutes.HandleFunc("", h.Enrollment.GetEnrollmentsHandler).Methods("GET")
	enrollmentRoutes.HandleFunc("", h.Enrollment.ReconcileOwnHandler).Methods("PUT")

	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(auth)
	notificationRoutes.HandleFunc("", h.Notification.GetUserNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{id}/read", h.Notification.MarkAsReadHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{id}", h.Notification.DeleteNotificationHandler).Methods("DELETE")

	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(auth)
	adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
	adminRoutes.HandleFunc("/users", h.User.AdminCreateUserHandler).Methods("POST")
	adminRoutes.HandleFunc("/students/{id}/enrollments", h.Enrollment.ReconcileStudentHandler).Methods("PUT")
}
