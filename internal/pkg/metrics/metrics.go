package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "registration"

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "login_attempts_total", Help: "Login attempts by outcome",
	}, []string{"outcome"})
	RegistrationDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "registration_decisions_total", Help: "Registration requests submitted, approved or rejected",
	}, []string{"decision"})
	EmailDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "email_deliveries_total", Help: "Notification emails by kind and result",
	}, []string{"kind", "result"})
	JobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "job_runs_total", Help: "Background job runs",
	}, []string{"job", "result"})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, LoginAttempts, RegistrationDecisions, EmailDeliveries, JobRuns)
}

func Handler() http.Handler { return promhttp.Handler() }

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route, status string, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveEmail records a notification attempt.
func ObserveEmail(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	EmailDeliveries.WithLabelValues(kind, result).Inc()
}

// ObserveJob records a background job run.
func ObserveJob(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	JobRuns.WithLabelValues(job, result).Inc()
}
