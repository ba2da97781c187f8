package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncEventIngested is a no-op.
func (n *NoopRecorder) IncEventIngested(status string) {}

// ObserveIngestDuration is a no-op.
func (n *NoopRecorder) ObserveIngestDuration(duration time.Duration) {}

// IncSummaryBuilt is a no-op.
func (n *NoopRecorder) IncSummaryBuilt() {}

// ObserveSummaryDuration is a no-op.
func (n *NoopRecorder) ObserveSummaryDuration(duration time.Duration) {}

// IncExportGenerated is a no-op.
func (n *NoopRecorder) IncExportGenerated(format string) {}

// IncTokenIssued is a no-op.
func (n *NoopRecorder) IncTokenIssued() {}
