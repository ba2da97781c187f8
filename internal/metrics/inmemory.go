package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	EventsAccepted    uint64
	EventsRejected    uint64
	EventsRateLimited uint64
	EventsStoreErrors uint64

	IngestDurationCount   uint64
	IngestDurationTotalNs int64

	SummariesBuilt         uint64
	SummaryDurationCount   uint64
	SummaryDurationTotalNs int64

	ExportsCSV  uint64
	ExportsJSON uint64

	TokensIssued uint64
}

// InMemoryRecorder stores metrics in memory. It backs the ops counters
// endpoint and is also handy in tests.
type InMemoryRecorder struct {
	eventsAccepted    uint64
	eventsRejected    uint64
	eventsRateLimited uint64
	eventsStoreErrors uint64

	ingestDurationCount   uint64
	ingestDurationTotalNs int64

	summariesBuilt         uint64
	summaryDurationCount   uint64
	summaryDurationTotalNs int64

	exportsCSV  uint64
	exportsJSON uint64

	tokensIssued uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		EventsAccepted:         atomic.LoadUint64(&m.eventsAccepted),
		EventsRejected:         atomic.LoadUint64(&m.eventsRejected),
		EventsRateLimited:      atomic.LoadUint64(&m.eventsRateLimited),
		EventsStoreErrors:      atomic.LoadUint64(&m.eventsStoreErrors),
		IngestDurationCount:    atomic.LoadUint64(&m.ingestDurationCount),
		IngestDurationTotalNs:  atomic.LoadInt64(&m.ingestDurationTotalNs),
		SummariesBuilt:         atomic.LoadUint64(&m.summariesBuilt),
		SummaryDurationCount:   atomic.LoadUint64(&m.summaryDurationCount),
		SummaryDurationTotalNs: atomic.LoadInt64(&m.summaryDurationTotalNs),
		ExportsCSV:             atomic.LoadUint64(&m.exportsCSV),
		ExportsJSON:            atomic.LoadUint64(&m.exportsJSON),
		TokensIssued:           atomic.LoadUint64(&m.tokensIssued),
	}
}

// IncEventIngested increments the counter for an ingest outcome.
func (m *InMemoryRecorder) IncEventIngested(status string) {
	switch status {
	case IngestAccepted:
		atomic.AddUint64(&m.eventsAccepted, 1)
	case IngestRejected:
		atomic.AddUint64(&m.eventsRejected, 1)
	case IngestRateLimited:
		atomic.AddUint64(&m.eventsRateLimited, 1)
	case IngestStoreError:
		atomic.AddUint64(&m.eventsStoreErrors, 1)
	}
}

// ObserveIngestDuration records ingest handling time.
func (m *InMemoryRecorder) ObserveIngestDuration(duration time.Duration) {
	atomic.AddUint64(&m.ingestDurationCount, 1)
	atomic.AddInt64(&m.ingestDurationTotalNs, duration.Nanoseconds())
}

// IncSummaryBuilt increments the summary counter.
func (m *InMemoryRecorder) IncSummaryBuilt() {
	atomic.AddUint64(&m.summariesBuilt, 1)
}

// ObserveSummaryDuration records summary build time.
func (m *InMemoryRecorder) ObserveSummaryDuration(duration time.Duration) {
	atomic.AddUint64(&m.summaryDurationCount, 1)
	atomic.AddInt64(&m.summaryDurationTotalNs, duration.Nanoseconds())
}

// IncExportGenerated increments the export counter for a format.
func (m *InMemoryRecorder) IncExportGenerated(format string) {
	switch format {
	case "csv":
		atomic.AddUint64(&m.exportsCSV, 1)
	case "json":
		atomic.AddUint64(&m.exportsJSON, 1)
	}
}

// IncTokenIssued increments the token counter.
func (m *InMemoryRecorder) IncTokenIssued() {
	atomic.AddUint64(&m.tokensIssued, 1)
}
