package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MedicalTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medical_request_transitions_total",
			Help: "Medical request status transitions applied",
		},
		[]string{"from", "to"},
	)

	MedicalTransitionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medical_request_transitions_rejected_total",
			Help: "Medical request transitions refused before or during the update",
		},
		[]string{"reason"},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Notifications handed to the store, by result",
		},
		[]string{"result"},
	)

	EnrollmentChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrollment_changes_total",
			Help: "Enrollment join records added or removed by reconciliation",
		},
		[]string{"op"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)
