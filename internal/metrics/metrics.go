package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/amirzhanov/jobboard-auth/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth flow metrics

	SignupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jobboard",
		Name:      "signups_total",
		Help:      "Total successful sign-ups.",
	})

	SigninsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobboard",
		Name:      "signins_total",
		Help:      "Total sign-in attempts, by outcome.",
	}, []string{"outcome"})

	OtpIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobboard",
		Name:      "otp_issued_total",
		Help:      "Total OTP codes issued, by flow.",
	}, []string{"flow"})

	OtpPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jobboard",
		Name:      "otp_purged_total",
		Help:      "Total expired OTP rows removed by the janitor.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobboard",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobboard",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		SignupsTotal,
		SigninsTotal,
		OtpIssuedTotal,
		OtpPurgedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes on a
// listener separate from the API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
