package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	BuildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "quixell_build_info",
		Help: "Running version and environment, value is always 1",
	}, []string{"version", "environment"})

	StartTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "quixell_start_time_seconds",
		Help: "Unix time the server started",
	})
)

func Init(version, environment string) {
	prometheus.MustRegister(BuildInfo, StartTime)

	BuildInfo.WithLabelValues(version, environment).Set(1)
	StartTime.Set(float64(time.Now().Unix()))
}
