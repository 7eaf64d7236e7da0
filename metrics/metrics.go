// Package metrics holds the prometheus collectors for provider attempts.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Attempt outcomes, used as the "outcome" label.
const (
	OutcomeSuccess      = "success"
	OutcomeNetworkError = "network_error"
	OutcomeDisabled     = "disabled"
	OutcomeHTTPError    = "http_error"
	OutcomeParseError   = "parse_error"
)

// Collectors groups the metrics one orchestrator reports to.
type Collectors struct {
	// ProviderRequests counts attempts per provider and outcome.
	ProviderRequests *prometheus.CounterVec
	// ProviderDuration measures attempt latency per provider.
	ProviderDuration *prometheus.HistogramVec
	// ProviderDisabled counts disabled signals per provider.
	ProviderDisabled *prometheus.CounterVec
	// Translations counts finished translations by result.
	Translations *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Collectors {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collectors{
		ProviderRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quicktrans_provider_requests_total",
				Help: "Translation provider attempts by outcome",
			},
			[]string{"provider", "outcome"},
		),
		ProviderDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quicktrans_provider_request_duration_seconds",
				Help:    "Translation provider request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		),
		ProviderDisabled: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quicktrans_provider_disabled_total",
				Help: "Disabled signals received from translation providers",
			},
			[]string{"provider"},
		),
		Translations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quicktrans_translations_total",
				Help: "Finished translations by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveAttempt records one provider attempt. Safe on a nil receiver.
func (c *Collectors) ObserveAttempt(provider, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.ProviderRequests.WithLabelValues(provider, outcome).Inc()
	c.ProviderDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	if outcome == OutcomeDisabled {
		c.ProviderDisabled.WithLabelValues(provider).Inc()
	}
}

// ObserveTranslation records the end of one translation. Safe on a nil
// receiver.
func (c *Collectors) ObserveTranslation(success bool) {
	if c == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	c.Translations.WithLabelValues(result).Inc()
}
