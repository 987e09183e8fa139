package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rcs_api_requests_total", Help: "API requests"},
		[]string{"endpoint", "status"},
	)
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rcs_auth_failures_total", Help: "Credential resolution failures"},
		[]string{"scheme"},
	)
	DispatchRecipients = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rcs_dispatch_recipients_total", Help: "Per-recipient dispatch outcomes"},
		[]string{"result"},
	)
	DispatchBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rcs_dispatch_batches_total", Help: "Send batch outcomes"},
		[]string{"outcome"},
	)
	FeedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rcs_feed_events_total", Help: "Delivery-event feed outcomes"},
		[]string{"result"},
	)
	FeedInsertLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "rcs_feed_insert_latency_seconds", Help: "Event insert latency"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(APIRequests, AuthFailures, DispatchRecipients, DispatchBatches, FeedEvents, FeedInsertLatency)
}
