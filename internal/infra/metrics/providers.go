package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(providerRequestDuration) }

var providerRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "provider_request_duration_seconds",
		Help:    "Latency of external provider calls, labeled by provider, operation and success.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"provider", "operation", "success"},
)

func ObserveProviderCall(provider, operation string, d time.Duration, success bool) {
	providerRequestDuration.
		WithLabelValues(norm(provider), norm(operation), strconv.FormatBool(success)).
		Observe(d.Seconds())
}
