package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/fiberpulse/fiberpulse/internal/auth"
	"github.com/fiberpulse/fiberpulse/internal/export"
	"github.com/fiberpulse/fiberpulse/internal/metrics"
	"github.com/fiberpulse/fiberpulse/internal/timerange"
)

// ExportHandler serves metric log downloads.
type ExportHandler struct {
	exporter *export.Exporter
	issuer   *auth.TokenIssuer
	recorder metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(
	exporter *export.Exporter,
	issuer *auth.TokenIssuer,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *ExportHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ExportHandler{
		exporter: exporter,
		issuer:   issuer,
		recorder: recorder,
		logger:   logger.With("component", "handler.export"),
		now:      time.Now,
	}
}

// Export handles POST /api/v1/metrics/export.
//
// Form fields: range (today|7d|30d|all), format (csv|json), token
// (anti-forgery). The admin key check happens in middleware; the token
// check here guards against replayed admin sessions driving exports
// from another origin.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed form body")
		return
	}

	if err := h.issuer.Verify(r.PostFormValue("token")); err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token")
		return
	}

	format, err := export.ParseFormat(r.PostFormValue("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "unsupported export format")
		return
	}

	rg := timerange.Normalize(r.PostFormValue("range"))

	var buf bytes.Buffer
	if err := h.exporter.Export(r.Context(), &buf, rg, format); err != nil {
		h.logger.Error("export failed",
			slog.String("range", string(rg)),
			slog.String("format", string(format)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "export failed")
		return
	}

	h.recorder.IncExportGenerated(string(format))

	filename := h.exporter.Filename(rg, format, h.now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename=`+filename)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
