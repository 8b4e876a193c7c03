// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsValidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_records_validated_total",
			Help: "Total number of records validated, by verdict",
		},
		[]string{"verdict"},
	)

	ValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_validation_errors_total",
			Help: "Total number of field validation errors, by error code",
		},
		[]string{"code"},
	)

	BuilderRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_builder_runs_total",
			Help: "Total number of builder runs, by artifact and outcome",
		},
		[]string{"artifact", "outcome"},
	)

	BuilderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "directory_builder_duration_seconds",
			Help: "Duration of builder runs in seconds",
		},
		[]string{"artifact"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_submissions_total",
			Help: "Total number of submissions, by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "directory_rate_limit_rejections_total",
			Help: "Total number of submissions rejected by the rate limiter",
		},
	)
)
