package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/fiberpulse/fiberpulse/internal/auth"
)

// AdminAuth returns a middleware that requires a valid admin key in the
// Authorization header (Bearer scheme). The presented key is verified
// against the argon2id hash computed at startup, so the plaintext key
// never lives in the router.
func AdminAuth(keyHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractBearer(r)
			if key == "" {
				writeErrorEnvelope(w, http.StatusUnauthorized, "missing admin key", "UNAUTHORIZED")
				return
			}

			ok, err := auth.VerifyAdminKey(key, keyHash)
			if err != nil {
				logger.Error("admin key verification failed",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("error", err.Error()),
				)
				writeErrorEnvelope(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
				return
			}
			if !ok {
				logger.Warn("invalid admin key presented",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("remote_addr", r.RemoteAddr),
				)
				writeErrorEnvelope(w, http.StatusForbidden, "invalid admin key", "FORBIDDEN")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearer pulls the credential out of an "Authorization: Bearer x"
// header. Returns "" when the header is absent or uses a different scheme.
func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeErrorEnvelope(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `","code":"` + code + `"}`))
}
