// Package metrics maintains per-route counters and a gauge and renders them
// in the minimal Prometheus-compatible text grammar this proxy exposes.
//
// The bookkeeping (atomic updates, no torn reads) is delegated to
// client_golang's CounterVec/GaugeVec; the wire format and the fixed
// per-route ordering the spec requires are owned by Registry.Render, not by
// promhttp, since promhttp's output additionally carries HELP/TYPE comments
// and process/go runtime collectors this design does not want on the wire.
package metrics

import (
	"fmt"
	"io"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the four per-route series and the route order they must be
// rendered in.
type Registry struct {
	routeNames []string

	requestCount     *prometheus.CounterVec
	successCount     *prometheus.CounterVec
	failedCount      *prometheus.CounterVec
	lastResponseTime *prometheus.GaugeVec
}

// NewRegistry builds a Registry with a zeroed series set for each route
// name, in the order given (which must be config order).
func NewRegistry(routeNames []string) *Registry {
	r := &Registry{
		routeNames: routeNames,
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "request_count",
			Help: "Total number of accepted inbound requests for this route.",
		}, []string{"route"}),
		successCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "successful_request_count",
			Help: "Total number of requests that received any HTTP response from an upstream.",
		}, []string{"route"}),
		failedCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "failed_request_count",
			Help: "Total number of requests where no upstream response could be obtained.",
		}, []string{"route"}),
		lastResponseTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "last_response_time",
			Help: "Latency in milliseconds of the most recent successful exchange.",
		}, []string{"route"}),
	}

	// Seed every series at zero so /metrics reports a full line set for a
	// route before it has ever been hit.
	for _, name := range routeNames {
		r.requestCount.WithLabelValues(name).Add(0)
		r.successCount.WithLabelValues(name).Add(0)
		r.failedCount.WithLabelValues(name).Add(0)
		r.lastResponseTime.WithLabelValues(name).Set(0)
	}

	return r
}

// RecordSuccess increments request_count and successful_request_count for
// route and sets last_response_time to elapsedMs.
func (r *Registry) RecordSuccess(route string, elapsedMs int64) {
	r.requestCount.WithLabelValues(route).Inc()
	r.successCount.WithLabelValues(route).Inc()
	r.lastResponseTime.WithLabelValues(route).Set(float64(elapsedMs))
}

// RecordFailure increments request_count and failed_request_count for
// route. last_response_time is left unchanged.
func (r *Registry) RecordFailure(route string) {
	r.requestCount.WithLabelValues(route).Inc()
	r.failedCount.WithLabelValues(route).Inc()
}

// Render writes every route's four series, in config order, in the order
// request_count, last_response_time, successful_request_count,
// failed_request_count, one "name value\n" line each.
func (r *Registry) Render(w io.Writer) error {
	for _, name := range r.routeNames {
		lines := []struct {
			suffix string
			value  float64
		}{
			{"request_count", counterValue(r.requestCount, name)},
			{"last_response_time", gaugeValue(r.lastResponseTime, name)},
			{"successful_request_count", counterValue(r.successCount, name)},
			{"failed_request_count", counterValue(r.failedCount, name)},
		}
		for _, line := range lines {
			if _, err := fmt.Fprintf(w, "%s_%s %d\n", name, line.suffix, int64(line.value)); err != nil {
				return err
			}
		}
	}
	return nil
}

func counterValue(vec *prometheus.CounterVec, route string) float64 {
	var m dto.Metric
	if err := vec.WithLabelValues(route).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(vec *prometheus.GaugeVec, route string) float64 {
	var m dto.Metric
	if err := vec.WithLabelValues(route).Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}
