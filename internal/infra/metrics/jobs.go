package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsCreatedTotal, jobsFinishedTotal, jobsActive) }

var jobsCreatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_created_total",
		Help: "Total number of jobs created, labeled by type.",
	},
	[]string{"type"}, // 'research', 'creative'
)

var jobsFinishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_finished_total",
		Help: "Total number of jobs reaching a terminal state, labeled by type and status.",
	},
	[]string{"type", "status"}, // 'succeeded', 'failed', 'cancelled'
)

var jobsActive = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "jobs_active",
		Help: "Number of jobs currently queued or running.",
	},
)

func IncJobCreated(jobType string) {
	jobsCreatedTotal.WithLabelValues(norm(jobType)).Inc()
	jobsActive.Inc()
}

func IncJobFinished(jobType, status string) {
	jobsFinishedTotal.WithLabelValues(norm(jobType), norm(status)).Inc()
	jobsActive.Dec()
}
