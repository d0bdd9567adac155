package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "thoughts"

// Metrics holds the Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	plans          *prometheus.CounterVec
	planItems      prometheus.Histogram
	remoteFailures prometheus.Counter
	notionPages    *prometheus.CounterVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWith(reg, reg)
}

// NewWith registers the collectors on reg, reusing collectors that are
// already registered there
func NewWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{gatherer: gatherer}

	m.httpRequests = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"}))
	m.httpDuration = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"}))
	m.plans = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "action_plans_total",
		Help:      "Generated action plans by planner source.",
	}, []string{"source"}))
	m.planItems = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "action_plan_items",
		Help:      "Number of items in generated action plans.",
		Buckets:   []float64{0, 1, 2, 3, 4, 5},
	}))
	m.remoteFailures = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_plan_failures_total",
		Help:      "Remote planner calls degraded to an empty plan.",
	}))
	m.notionPages = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notion_sync_pages_total",
		Help:      "Todos pushed to Notion by result.",
	}, []string{"result"}))

	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObservePlan records a generated plan
func (m *Metrics) ObservePlan(source string, items int) {
	if m == nil {
		return
	}
	m.plans.WithLabelValues(source).Inc()
	m.planItems.Observe(float64(items))
}

// RemoteFailure counts a remote plan degraded to empty
func (m *Metrics) RemoteFailure(error) {
	if m == nil {
		return
	}
	m.remoteFailures.Inc()
}

// NotionPage counts one pushed page, result is "ok" or "error"
func (m *Metrics) NotionPage(result string) {
	if m == nil {
		return
	}
	m.notionPages.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
