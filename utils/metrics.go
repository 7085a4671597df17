package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts lifecycle events by outcome (applied, rejected, conflict).
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagement_transitions_total",
		Help: "Engagement lifecycle events by event and outcome.",
	}, []string{"event", "outcome"})

	RatingSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rating_submissions_total",
		Help: "Rating submissions by kind (create or update).",
	}, []string{"kind"})

	// SideEffectFailures counts post-commit work that failed without undoing the write.
	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagement_side_effect_failures_total",
		Help: "Failed notifications, feed publishes, reminders, payouts and reputation recomputes.",
	}, []string{"kind"})

	TasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_tasks_processed_total",
		Help: "Background tasks handled by type and result.",
	}, []string{"type", "result"})
)
