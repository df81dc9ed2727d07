// Package metrics holds the Prometheus collectors for the API and the relay.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "offerdesk"

// Metrics is the set of collectors exported by a process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	created         prometheus.Counter
	rendered        prometheus.Counter
	renderSeconds   prometheus.Histogram
	sent            prometheus.Counter
	failures        *prometheus.CounterVec
	verifyLookups   *prometheus.CounterVec
	relayEmails     *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	reconciledDraft prometheus.Counter
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		created: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "offer_letters_created_total",
			Help: "Offer letters created in draft state.",
		}),
		rendered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "documents_generated_total",
			Help: "Offer letter documents rendered and stored.",
		}),
		renderSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "document_render_seconds",
			Help:    "Time spent rendering a PDF.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		sent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "offer_letters_sent_total",
			Help: "Offer letters handed to the email relay successfully.",
		}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "lifecycle_failures_total",
			Help: "Failed lifecycle operations by operation and error kind.",
		}, []string{"operation", "kind"}),
		verifyLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "verify_lookups_total",
			Help: "Public reference code lookups by result.",
		}, []string{"result"}),
		relayEmails: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "relay_emails_total",
			Help: "Relay send-email requests by result.",
		}, []string{"result"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reconciledDraft: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "reconciled_documents_total",
			Help: "Draft records promoted because their document was already stored.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) OfferLetterCreated() {
	if m != nil {
		m.created.Inc()
	}
}

func (m *Metrics) DocumentGenerated(renderTime time.Duration) {
	if m != nil {
		m.rendered.Inc()
		m.renderSeconds.Observe(renderTime.Seconds())
	}
}

func (m *Metrics) OfferLetterSent() {
	if m != nil {
		m.sent.Inc()
	}
}

// LifecycleFailure counts a failed operation; kind comes from apperrors.Kind
func (m *Metrics) LifecycleFailure(operation, kind string) {
	if m != nil {
		m.failures.WithLabelValues(operation, kind).Inc()
	}
}

func (m *Metrics) VerifyLookup(result string) {
	if m != nil {
		m.verifyLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) RelayEmail(result string) {
	if m != nil {
		m.relayEmails.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) DocumentReconciled() {
	if m != nil {
		m.reconciledDraft.Inc()
	}
}

// ObserveHTTP records one finished request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
