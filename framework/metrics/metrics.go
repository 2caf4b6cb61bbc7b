// Package metrics holds the Prometheus collectors for controller activation
// and the handler that exposes them.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "activation"

// Activation results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder counts controller activations and release failures.
type Recorder struct {
	registry *prometheus.Registry

	activations   *prometheus.CounterVec
	releaseErrors *prometheus.CounterVec
	factories     prometheus.GaugeFunc
}

// NewRecorder registers the activation collectors on a fresh registry.
// cachedFactories, when non-nil, is sampled on each scrape.
func NewRecorder(cachedFactories func() int) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		activations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "activations_total",
				Help:      "Controller activations by controller type, source and result.",
			},
			[]string{"controller", "source", "result"},
		),
		releaseErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "release_errors_total",
				Help:      "Controllers whose disposal returned an error.",
			},
			[]string{"controller"},
		),
	}
	r.registry.MustRegister(r.activations, r.releaseErrors)

	if cachedFactories != nil {
		r.factories = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cached_factories",
				Help:      "Factories held by the activation cache.",
			},
			func() float64 { return float64(cachedFactories()) },
		)
		r.registry.MustRegister(r.factories)
	}
	return r
}

// Activation records one activation. source is "container" or "factory";
// failed activations have no source and are recorded with source "none".
func (r *Recorder) Activation(controller, source string, err error) {
	if r == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
		source = "none"
	}
	r.activations.WithLabelValues(controller, source, result).Inc()
}

// ReleaseError records a failed disposal.
func (r *Recorder) ReleaseError(controller string) {
	if r == nil {
		return
	}
	r.releaseErrors.WithLabelValues(controller).Inc()
}

// Registry exposes the underlying registry for additional collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
		Registry:      r.registry,
		Timeout:       30 * time.Second,
	})
}
