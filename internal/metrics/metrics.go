package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_decisions_total",
			Help: "Resolved landing gate decisions.",
		},
		[]string{"decision"},
	)

	CheckLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_check_lookups_total",
			Help: "Verification store lookups by result.",
		},
		[]string{"result"},
	)

	VerifiedDevices = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "verified_devices",
			Help: "Devices holding a verified record, refreshed by the cleanup loop.",
		},
	)
)

// Check lookup results
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		GateDecisionsTotal,
		CheckLookupsTotal,
		VerifiedDevices,
	)
}
