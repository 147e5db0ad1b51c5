// Package metrics exposes review pipeline counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

const namespace = "catalog"

// Recorder implements ports.Metrics on a Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	reviews       *prometheus.CounterVec
	batchSkips    *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewRecorder registers the review counters on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		reviews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reviews_total",
				Help:      "Reviews by proposal kind, decision and result",
			},
			[]string{"kind", "decision", "result"},
		),
		batchSkips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_items_skipped_total",
				Help:      "Batch review items not processed, by reason",
			},
			[]string{"reason"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Outbound notifications by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveReview implements ports.Metrics.
func (r *Recorder) ObserveReview(kind entities.ProposalKind, decision entities.Decision, result string) {
	r.reviews.WithLabelValues(string(kind), string(decision), result).Inc()
}

// ObserveBatchSkip implements ports.Metrics.
func (r *Recorder) ObserveBatchSkip(reason string) {
	r.batchSkips.WithLabelValues(reason).Inc()
}

// ObserveNotification implements ports.Metrics.
func (r *Recorder) ObserveNotification(result string) {
	r.notifications.WithLabelValues(result).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
