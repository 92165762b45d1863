package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "douban", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "douban", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// Interactions counts comment/like mutations by operation, content kind and outcome code.
	Interactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "douban", Name: "interactions_total", Help: "Comment and like mutations by operation, kind and outcome."},
		[]string{"op", "kind", "outcome"},
	)
	ConflictRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "douban", Name: "conflict_retries_total", Help: "Mutations re-run after a version conflict."},
		[]string{"op"},
	)
	FeedBuilds = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "douban", Name: "feed_builds_total", Help: "Number of activity feeds built."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(Interactions)
	reg.MustRegister(ConflictRetries)
	reg.MustRegister(FeedBuilds)
}
