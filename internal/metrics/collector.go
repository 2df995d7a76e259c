package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-mdsclient/pkg/resource"
)

const (
	namespace = "mds_client"

	labelResource = "resource"
	labelAction   = "action"
	labelMethod   = "method"
	labelOutcome  = "outcome"
)

// InvocationCollector counts resource invocations and observes their latency,
// labelled by resource, action, method and outcome.
type InvocationCollector struct {
	invocations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

var (
	_ resource.MetricsRecorder = (*InvocationCollector)(nil)
	_ prometheus.Collector     = (*InvocationCollector)(nil)
)

// NewInvocationCollector constructs the collector. Register it with a
// prometheus.Registerer to expose it.
func NewInvocationCollector() *InvocationCollector {
	labels := []string{labelResource, labelAction, labelMethod, labelOutcome}
	return &InvocationCollector{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Resource action invocations by outcome.",
		}, labels),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Resource action latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
	}
}

// Register creates a collector and registers it with reg.
func Register(reg prometheus.Registerer) (*InvocationCollector, error) {
	c := NewInvocationCollector()
	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ObserveInvocation implements resource.MetricsRecorder. Rejected invocations
// never reached the transport and only bump the counter.
func (c *InvocationCollector) ObserveInvocation(family, action, method, outcome string, elapsed time.Duration) {
	if method == "" {
		method = "none"
	}
	c.invocations.WithLabelValues(family, action, method, outcome).Inc()
	if outcome == resource.OutcomeRejected {
		return
	}
	c.latency.WithLabelValues(family, action, method, outcome).Observe(elapsed.Seconds())
}

func (c *InvocationCollector) Describe(ch chan<- *prometheus.Desc) {
	c.invocations.Describe(ch)
	c.latency.Describe(ch)
}

func (c *InvocationCollector) Collect(ch chan<- prometheus.Metric) {
	c.invocations.Collect(ch)
	c.latency.Collect(ch)
}
