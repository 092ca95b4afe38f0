package tracking

import "github.com/prometheus/client_golang/prometheus"

var (
	WritesScheduled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_writes_scheduled_total",
			Help: "Background tracking writes accepted, by kind.",
		},
		[]string{"kind"},
	)

	WriteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_write_failures_total",
			Help: "Background tracking writes that failed, by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(WritesScheduled, WriteFailures)
}
