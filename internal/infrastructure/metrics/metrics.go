package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	TransfersCompleted prometheus.Counter
	TransferDuration   prometheus.Histogram
	TransferAmount     prometheus.Histogram
	TransferErrors     *prometheus.CounterVec
	TransferRetries    prometheus.Counter
	CommissionCharged  prometheus.Counter

	// Batch metrics
	BatchItems *prometheus.CounterVec
	BatchSize  prometheus.Histogram

	// Reconciliation metrics
	AccountsReconciled     prometheus.Counter
	DiscrepanciesFound     prometheus.Counter
	DiscrepanciesCorrected prometheus.Counter
	DiscrepanciesFlagged   prometheus.Counter

	// Archival metrics
	TransfersArchived prometheus.Counter
	ArchiveChunks     prometheus.Counter

	// Job metrics
	JobRuns     *prometheus.CounterVec
	JobDuration *prometheus.HistogramVec
	JobSkipped  *prometheus.CounterVec

	// Notification metrics
	EventsPublished *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Transfer metrics
		TransfersCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_transfers_completed_total",
			Help: "Total number of transfers completed",
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletd_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransferAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletd_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),
		TransferRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_transfer_retries_total",
			Help: "Total number of transfer retries after store conflicts",
		}),
		CommissionCharged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_commission_charged_total",
			Help: "Total commission charged, in currency units",
		}),

		// Batch metrics
		BatchItems: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_batch_items_total",
				Help: "Total batch transfer items by outcome",
			},
			[]string{"outcome"},
		),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletd_batch_size",
			Help:    "Number of items per batch request",
			Buckets: []float64{1, 10, 50, 100, 500, 1000},
		}),

		// Reconciliation metrics
		AccountsReconciled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_accounts_reconciled_total",
			Help: "Total number of accounts reconciled",
		}),
		DiscrepanciesFound: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_discrepancies_found_total",
			Help: "Total number of balance discrepancies found",
		}),
		DiscrepanciesCorrected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_discrepancies_corrected_total",
			Help: "Total number of balance discrepancies auto-corrected",
		}),
		DiscrepanciesFlagged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_discrepancies_flagged_total",
			Help: "Total number of large discrepancies flagged for review",
		}),

		// Archival metrics
		TransfersArchived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_transfers_archived_total",
			Help: "Total number of transfers moved to the archive",
		}),
		ArchiveChunks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_archive_chunks_total",
			Help: "Total number of archive chunks committed",
		}),

		// Job metrics
		JobRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_job_runs_total",
				Help: "Total job runs by job and status",
			},
			[]string{"job", "status"},
		),
		JobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletd_job_duration_seconds",
				Help:    "Job run duration",
				Buckets: []float64{1, 10, 60, 300, 900, 3600, 7200},
			},
			[]string{"job"},
		),
		JobSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_job_skipped_total",
				Help: "Total job runs skipped because the lease was held",
			},
			[]string{"job"},
		),

		// Notification metrics
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_events_published_total",
				Help: "Total notification events published by status",
			},
			[]string{"status"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletd_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}
