package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// checkinsTotal counts successful vendor check-ins.
	checkinsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vendor_checkins_total",
		Help: "Total number of successful vendor check-ins.",
	})

	// lazyExpiriesTotal counts vendors closed on read because they were past
	// their expiry instant.
	lazyExpiriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vendor_lazy_expiries_total",
		Help: "Vendors closed on read after their expiry instant.",
	})

	// sweepRunsTotal counts sweep cycles by outcome ("ok" or "error").
	sweepRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendor_sweep_runs_total",
		Help: "Expiry sweep cycles by outcome.",
	}, []string{"outcome"})

	// sweepClosedTotal counts vendors closed by the periodic sweep.
	sweepClosedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vendor_sweep_closed_total",
		Help: "Vendors closed by the periodic expiry sweep.",
	})

	// searchResults observes result counts per search kind.
	searchResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vendor_search_results",
		Help:    "Number of vendors returned per search.",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	}, []string{"kind"})

	// paymentsTotal counts payment state changes by status.
	paymentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendor_payments_total",
		Help: "Payment transactions by resulting status.",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(
		checkinsTotal,
		lazyExpiriesTotal,
		sweepRunsTotal,
		sweepClosedTotal,
		searchResults,
		paymentsTotal,
	)
}
