package handler

import (
	"fmt"
	"net/http"

	"github.com/fiberpulse/fiberpulse/internal/metrics"
)

// OpsHandler exposes in-memory counters for scraping.
type OpsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(snapshotter metrics.Snapshotter) *OpsHandler {
	return &OpsHandler{snapshotter: snapshotter}
}

// Counters returns metrics in Prometheus exposition format.
// GET /internal/metrics (admin only)
func (h *OpsHandler) Counters(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeCounter(w, "fiberpulse_events_ingested_total{status=\"accepted\"} %d\n", snap.EventsAccepted)
	writeCounter(w, "fiberpulse_events_ingested_total{status=\"rejected\"} %d\n", snap.EventsRejected)
	writeCounter(w, "fiberpulse_events_ingested_total{status=\"rate_limited\"} %d\n", snap.EventsRateLimited)
	writeCounter(w, "fiberpulse_events_ingested_total{status=\"store_error\"} %d\n", snap.EventsStoreErrors)

	writeCounter(w, "fiberpulse_ingest_duration_seconds_count %d\n", snap.IngestDurationCount)
	writeCounter(w, "fiberpulse_ingest_duration_seconds_sum %.6f\n", float64(snap.IngestDurationTotalNs)/1e9)

	writeCounter(w, "fiberpulse_summaries_built_total %d\n", snap.SummariesBuilt)
	writeCounter(w, "fiberpulse_summary_duration_seconds_count %d\n", snap.SummaryDurationCount)
	writeCounter(w, "fiberpulse_summary_duration_seconds_sum %.6f\n", float64(snap.SummaryDurationTotalNs)/1e9)

	writeCounter(w, "fiberpulse_exports_generated_total{format=\"csv\"} %d\n", snap.ExportsCSV)
	writeCounter(w, "fiberpulse_exports_generated_total{format=\"json\"} %d\n", snap.ExportsJSON)

	writeCounter(w, "fiberpulse_tokens_issued_total %d\n", snap.TokensIssued)
}

func writeCounter(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
