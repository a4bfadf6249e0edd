package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "compliance",
	Name:      "analyses_total",
	Help:      "Compliance analyses by verdict status.",
}, []string{"status"})

// observeAnalysis records one completed analysis.
func observeAnalysis(status string) {
	analysesTotal.WithLabelValues(status).Inc()
}

// RegisterMetricsHandler exposes the Prometheus endpoint.
func RegisterMetricsHandler(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
