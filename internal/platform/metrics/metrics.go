package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SubmissionsAccepted prometheus.Counter
	SubmissionsRejected *prometheus.CounterVec
	IssuesDerived       prometheus.Counter
	DraftsSaved         prometheus.Counter
	DraftsEvicted       *prometheus.CounterVec
	MatrixBuildDuration prometheus.Histogram
	ExportsGenerated    *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SubmissionsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lpa_submissions_accepted_total",
			Help: "Total number of audit submissions persisted",
		}),
		SubmissionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lpa_submissions_rejected_total",
			Help: "Total number of audit submissions rejected, by reason",
		}, []string{"reason"}),
		IssuesDerived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lpa_issues_derived_total",
			Help: "Total number of issue records derived from non-conforming answers",
		}),
		DraftsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lpa_drafts_saved_total",
			Help: "Total number of draft autosaves",
		}),
		DraftsEvicted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lpa_drafts_evicted_total",
			Help: "Total number of drafts evicted, by cause (expired, corrupt, submitted)",
		}, []string{"cause"}),
		MatrixBuildDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lpa_matrix_build_duration_ms",
			Help:    "Latency of compliance matrix builds in milliseconds",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250},
		}),
		ExportsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lpa_exports_generated_total",
			Help: "Total number of matrix exports generated, by format",
		}, []string{"format"}),
	}
}
