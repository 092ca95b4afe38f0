package recommendation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecommendPathTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Recommendation requests by ranking path (warm, cold) and outcome.",
		},
		[]string{"path", "outcome"},
	)

	ForcedAffinityItems = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_forced_affinity_items",
		Help:    "Number of brand-affinity items injected per recommendation.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	SnapshotSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommendation_snapshot_size",
			Help: "Size of the current interaction snapshot by dimension.",
		},
		[]string{"dimension"},
	)
)

func init() {
	prometheus.MustRegister(RecommendPathTotal, ForcedAffinityItems, SnapshotSize)
}
