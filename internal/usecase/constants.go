package usecase

import "github.com/shopspring/decimal"

const (
	// BatchChunkSize is the number of requests processed per batch chunk.
	BatchChunkSize = 100

	// ReconcilePageSize bounds memory during a reconciliation pass.
	ReconcilePageSize = 1000

	// ArchiveChunkSize is the number of transfers moved per archive
	// transaction.
	ArchiveChunkSize = 1000

	// ListPageSize is the page size for transaction listings.
	ListPageSize = 20

	// DefaultArchiveRetentionMonths is how long transfers stay in the
	// live ledger before becoming archivable.
	DefaultArchiveRetentionMonths = 24
)

var (
	// DiscrepancyThreshold is the smallest balance drift worth reporting.
	DiscrepancyThreshold = decimal.NewFromFloat(0.01)

	// AutoCorrectCeiling bounds automatic balance corrections. Larger
	// drifts are flagged for manual review instead.
	AutoCorrectCeiling = decimal.NewFromInt(1000)
)
