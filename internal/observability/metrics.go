package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelog_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travelog_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthEvents counts registration and login outcomes.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelog_auth_events_total",
		Help: "Total authentication events by outcome",
	}, []string{"event"})

	// PostWrites counts post writes by operation and result.
	PostWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelog_post_writes_total",
		Help: "Total post writes by operation and result",
	}, []string{"op", "result"})

	// MailDeliveries counts notification email attempts by result.
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelog_mail_deliveries_total",
		Help: "Total notification emails by result",
	}, []string{"result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ResultLabel maps an error to the "ok"/"error" metric label.
func ResultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
