package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fiberpulse/fiberpulse/internal/auth"
	"github.com/fiberpulse/fiberpulse/internal/cache"
	"github.com/fiberpulse/fiberpulse/internal/handler/dto"
	"github.com/fiberpulse/fiberpulse/internal/metrics"
	"github.com/fiberpulse/fiberpulse/internal/model"
	"github.com/fiberpulse/fiberpulse/internal/store"
)

// TokenHeader carries the anti-forgery ingest token on beacon requests.
const TokenHeader = "X-Metrics-Token"

// MetricsHandler serves event ingestion, dashboard summaries and token
// issuance.
type MetricsHandler struct {
	store    store.EventStore
	agg      Summarizer
	issuer   *auth.TokenIssuer
	limiter  *cache.EventLimiter
	recorder metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Summarizer builds dashboard summaries. Implemented by
// aggregate.Aggregator.
type Summarizer interface {
	PrepareSummary(ctx context.Context, rawRange string) model.Summary
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(
	st store.EventStore,
	agg Summarizer,
	issuer *auth.TokenIssuer,
	limiter *cache.EventLimiter,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *MetricsHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &MetricsHandler{
		store:    st,
		agg:      agg,
		issuer:   issuer,
		limiter:  limiter,
		recorder: recorder,
		logger:   logger.With("component", "handler.metrics"),
		now:      time.Now,
	}
}

// IngestEvent handles POST /api/v1/metrics.
//
// Checks run in a fixed order: anti-forgery token, body shape, event
// type, rate limit. Storage failures after a request passed validation
// are logged but never surfaced to the client.
func (h *MetricsHandler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	defer func() {
		h.recorder.ObserveIngestDuration(h.now().Sub(start))
	}()

	if err := h.issuer.Verify(r.Header.Get(TokenHeader)); err != nil {
		h.recorder.IncEventIngested(metrics.IngestRejected)
		if errors.Is(err, auth.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "ingest token expired")
			return
		}
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid ingest token")
		return
	}

	var req dto.IngestEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recorder.IncEventIngested(metrics.IngestRejected)
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed request body")
		return
	}

	eventType := model.NormalizeEventType(req.Type)
	if !model.IsSupportedEventType(eventType) {
		h.recorder.IncEventIngested(metrics.IngestRejected)
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_TYPE", "unsupported event type")
		return
	}

	targetID := req.ResolveTargetID()
	if targetID < 0 {
		h.recorder.IncEventIngested(metrics.IngestRejected)
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "target_id must be non-negative")
		return
	}

	fp := cache.Fingerprint(clientIP(r), r.UserAgent())
	if h.limiter != nil && !h.limiter.Allow(r.Context(), fp, eventType) {
		h.recorder.IncEventIngested(metrics.IngestRateLimited)
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many events")
		return
	}

	event := model.MetricEvent{
		ID:        ulid.Make().String(),
		Timestamp: h.now().UTC().Unix(),
		Type:      eventType,
		TargetID:  targetID,
		Reference: model.SanitizeReference(req.ResolveReference()),
		Extra:     model.SanitizeExtra(req.Extra),
	}

	if err := h.store.Append(r.Context(), event); err != nil {
		// Best effort: the beacon already passed validation, so the
		// client gets a success either way.
		h.recorder.IncEventIngested(metrics.IngestStoreError)
		h.logger.Error("failed to append event",
			slog.String("event_id", event.ID),
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
		)
	} else {
		h.recorder.IncEventIngested(metrics.IngestAccepted)
	}

	writeJSON(w, http.StatusCreated, dto.IngestEventResponse{OK: true})
}

// GetSummary handles GET /api/v1/metrics.
// Admin-only; auth is enforced by middleware on the route.
func (h *MetricsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	start := h.now()

	summary := h.agg.PrepareSummary(r.Context(), r.URL.Query().Get("range"))

	h.recorder.IncSummaryBuilt()
	h.recorder.ObserveSummaryDuration(h.now().Sub(start))

	writeJSON(w, http.StatusOK, summary)
}

// IssueToken handles GET /api/v1/metrics/token.
// Public: the marketing site fetches a token before posting beacons.
func (h *MetricsHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	token := h.issuer.Issue()
	h.recorder.IncTokenIssued()

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		Token:     token,
		ExpiresIn: int64(h.issuer.TTL().Seconds()),
	})
}

// clientIP extracts the client address without the port. RealIP
// middleware has already resolved proxies into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
