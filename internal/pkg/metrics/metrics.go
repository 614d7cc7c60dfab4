package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Receipt dispatch outcomes
const (
	ReceiptSent          = "sent"
	ReceiptFailed        = "failed"
	ReceiptAlreadySent   = "already_sent"
	ReceiptPersistFailed = "persist_failed"
)

var (
	votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "congregation_votes_total",
		Help: "Total number of votes cast on forum content",
	}, []string{"content", "direction"})

	receiptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "congregation_receipt_dispatch_total",
		Help: "Donation receipt dispatch attempts by outcome",
	}, []string{"outcome"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "congregation_logins_total",
		Help: "Login attempts by principal kind and outcome",
	}, []string{"kind", "outcome"})

	donationsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "congregation_donations_recorded_total",
		Help: "Total number of donations recorded",
	})
)

// RecordVote counts a vote on a post or comment
func RecordVote(content, direction string) {
	votesTotal.WithLabelValues(content, direction).Inc()
}

// RecordReceiptDispatch counts a receipt issuance attempt
func RecordReceiptDispatch(outcome string) {
	receiptsTotal.WithLabelValues(outcome).Inc()
}

// RecordLogin counts a login attempt
func RecordLogin(kind string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	loginsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordDonation counts a newly recorded donation
func RecordDonation() {
	donationsRecorded.Inc()
}

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "congregation_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "congregation_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveRequest records one served HTTP request
func ObserveRequest(method, route, status string, elapsed time.Duration) {
	requestsTotal.WithLabelValues(method, route, status).Inc()
	requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
