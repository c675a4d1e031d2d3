package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ScanCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arbwatcher_scan_cycles_total",
		Help: "Completed scan cycles",
	})

	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbwatcher_scan_duration_seconds",
		Help:    "Wall time of one scan cycle",
		Buckets: prometheus.DefBuckets,
	})

	OpportunitiesFound = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arbwatcher_opportunities_total",
		Help: "Evaluated venue-pair directions, by profitability",
	}, []string{"profitable"})

	BestProfitPct = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arbwatcher_best_profit_percent",
		Help: "Best net profit percentage seen in the last cycle",
	})

	SnapshotsRead = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arbwatcher_snapshots_read",
		Help: "Pool snapshots read in the last cycle",
	})

	BundlesBuilt = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arbwatcher_bundles_built_total",
		Help: "Transaction bundles assembled",
	})

	RelaySubmissions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arbwatcher_relay_submissions_total",
		Help: "Bundle submissions attempted",
	})

	RelayErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arbwatcher_relay_errors_total",
		Help: "Bundle submissions that failed",
	})

	AlertsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arbwatcher_alerts_sent_total",
		Help: "Opportunity alerts delivered",
	})
)

func init() {
	prometheus.MustRegister(
		ScanCycles,
		ScanDuration,
		OpportunitiesFound,
		BestProfitPct,
		SnapshotsRead,
		BundlesBuilt,
		RelaySubmissions,
		RelayErrors,
		AlertsSent,
	)
}
