package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ColumnsRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "columntrack_columns_registered_total",
			Help: "Columns added to the inventory",
		},
	)
	UsageLogged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "columntrack_usage_logged_total",
			Help: "Usage entries recorded",
		},
	)
	Reports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "columntrack_reports_total",
			Help: "Usage reports by outcome",
		},
		[]string{"status"},
	)
	RenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "columntrack_report_render_seconds",
			Help:    "Time spent rendering a usage report",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Register вызывается один раз из main.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(ColumnsRegistered, UsageLogged, Reports, RenderDuration)
}
