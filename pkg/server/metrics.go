package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	diagnostics *prometheus.CounterVec
	cache       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ruleschema_conversions_total",
				Help: "Conversions handled, by output format and outcome",
			},
			[]string{"format", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ruleschema_conversion_duration_seconds",
				Help:    "Duration of conversions that reached the generator",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ruleschema_diagnostics_total",
				Help: "Rules skipped during generation, by reason",
			},
			[]string{"kind"},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ruleschema_cache_lookups_total",
				Help: "Conversion cache lookups, by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.conversions, m.duration, m.diagnostics, m.cache)
	return m
}
