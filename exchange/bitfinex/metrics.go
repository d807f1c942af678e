package bitfinex

import (
	"time"

	"github.com/lukehollenback/bfxrest/exchange"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request kinds used as the "kind" label.
const (
	KindPublic        = "public"
	KindAuthenticated = "authenticated"
)

// Request outcomes used as the "outcome" label.
const (
	OutcomeOK             = "ok"
	OutcomeAPIError       = "api_error"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
	OutcomeConfigError    = "config_error"
	OutcomeOther          = "other"
)

// Metrics holds the Prometheus collectors a Client reports into. A nil *Metrics records nothing.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the client's collectors with the provided registerer. A nil registerer
// selects the default one.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitfinex_rest_requests_total",
				Help: "The total number of Bitfinex REST requests by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bitfinex_rest_request_duration_seconds",
				Help:    "Latency of Bitfinex REST requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}
}

func (o *Metrics) observe(kind string, start time.Time, err error) {
	if o == nil {
		return
	}

	o.Requests.WithLabelValues(kind, outcomeOf(err)).Inc()
	o.RequestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func outcomeOf(err error) string {
	var (
		apiErr       *APIError
		httpErr      *exchange.HTTPError
		transportErr *TransportError
		configErr    *ConfigError
	)

	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &apiErr):
		return OutcomeAPIError
	case errors.As(err, &httpErr):
		// Checked ahead of TransportError, which wraps it.
		return OutcomeHTTPError
	case errors.As(err, &transportErr):
		return OutcomeTransportError
	case errors.As(err, &configErr):
		return OutcomeConfigError
	}

	return OutcomeOther
}
