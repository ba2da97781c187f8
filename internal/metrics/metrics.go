// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Ingest outcome labels.
const (
	IngestAccepted    = "accepted"
	IngestRejected    = "rejected"
	IngestRateLimited = "rate_limited"
	IngestStoreError  = "store_error"
)

// Recorder captures instrumentation events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Ingest pipeline
	IncEventIngested(status string)
	ObserveIngestDuration(duration time.Duration)

	// Dashboard reads
	IncSummaryBuilt()
	ObserveSummaryDuration(duration time.Duration)

	// Exports
	IncExportGenerated(format string)

	// Token issuance
	IncTokenIssued()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
