// Package dto defines request/response payloads for the HTTP API.
package dto

// IngestEventRequest is the body of POST /api/v1/metrics. The short
// field names pid and ref are accepted as aliases for target_id and
// reference; older beacons send the short form.
type IngestEventRequest struct {
	Type      string            `json:"type"`
	TargetID  *int64            `json:"target_id,omitempty"`
	PID       *int64            `json:"pid,omitempty"`
	Reference string            `json:"reference,omitempty"`
	Ref       string            `json:"ref,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// ResolveTargetID returns target_id, falling back to the pid alias.
// Absent means 0 (no associated page).
func (r IngestEventRequest) ResolveTargetID() int64 {
	if r.TargetID != nil {
		return *r.TargetID
	}
	if r.PID != nil {
		return *r.PID
	}
	return 0
}

// ResolveReference returns reference, falling back to the ref alias.
func (r IngestEventRequest) ResolveReference() string {
	if r.Reference != "" {
		return r.Reference
	}
	return r.Ref
}

// IngestEventResponse acknowledges a recorded event.
type IngestEventResponse struct {
	OK bool `json:"ok"`
}

// TokenResponse carries a freshly issued ingest token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
