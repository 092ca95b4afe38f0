package forecast

import "github.com/prometheus/client_golang/prometheus"

var (
	UpstreamFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_upstream_failures_total",
			Help: "Failed calls to the forecasting endpoint by reason",
		},
		[]string{"reason"},
	)

	BreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "forecast_circuit_breaker_state",
			Help: "Forecast circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

func init() {
	prometheus.MustRegister(UpstreamFailures, BreakerState)
}
