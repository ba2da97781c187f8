// Package model defines domain entities for the application.
package model

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Supported event types. Ingestion rejects anything else, and readers
// filter defensively in case older entries carry retired types.
const (
	EventTypeCTAClick = "cta_click"
)

// Limits applied when normalizing incoming events.
const (
	// MaxReferenceLength caps the free-form referrer string.
	MaxReferenceLength = 250

	// MaxExtraEntries caps the number of auxiliary dimensions per event.
	MaxExtraEntries = 10

	// MaxExtraKeyLength caps extra map keys.
	MaxExtraKeyLength = 50

	// MaxExtraValueLength caps extra map values.
	MaxExtraValueLength = 250
)

// MetricEvent represents one recorded CTA interaction.
// Events are append-only: created at ingest time and never mutated.
type MetricEvent struct {
	ID        string            `json:"id,omitempty"`        // ULID (time-sortable)
	Timestamp int64             `json:"timestamp"`           // UTC epoch seconds, server-assigned
	Type      string            `json:"type"`                // one of the supported types
	TargetID  int64             `json:"target_id,omitempty"` // internal page id; 0 = no associated page
	Reference string            `json:"reference,omitempty"` // referrer URL fallback (truncated)
	Extra     map[string]string `json:"extra,omitempty"`     // auxiliary dimensions (e.g. CTA subtype)
}

// IsSupportedEventType reports whether t is a known event type.
func IsSupportedEventType(t string) bool {
	return t == EventTypeCTAClick
}

// NormalizeEventType lowercases and trims an incoming type string.
func NormalizeEventType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// SanitizeReference trims, strips control characters and truncates a
// referrer string to MaxReferenceLength.
func SanitizeReference(ref string) string {
	ref = stripControl(strings.TrimSpace(ref))
	if len(ref) > MaxReferenceLength {
		ref = ref[:MaxReferenceLength]
	}
	return ref
}

// SanitizeExtra returns a cleaned copy of the extra dimensions map.
// Keys and values are trimmed, control characters stripped, and lengths
// capped. Entries with empty keys after cleaning are dropped. At most
// MaxExtraEntries entries are kept.
func SanitizeExtra(extra map[string]string) map[string]string {
	if len(extra) == 0 {
		return nil
	}

	out := make(map[string]string, len(extra))
	for k, v := range extra {
		if len(out) >= MaxExtraEntries {
			break
		}

		k = stripControl(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if len(k) > MaxExtraKeyLength {
			k = k[:MaxExtraKeyLength]
		}

		v = stripControl(strings.TrimSpace(v))
		if len(v) > MaxExtraValueLength {
			v = v[:MaxExtraValueLength]
		}

		out[k] = v
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// stripControl removes control characters from a string.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// DecodeEvents deserializes a stored JSON event log defensively.
// The input is expected to be a JSON array; malformed elements are
// silently dropped so that historical schema drift or corruption never
// breaks a read. Missing fields default to their zero values.
func DecodeEvents(data []byte) []MetricEvent {
	if len(data) == 0 {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	events := make([]MetricEvent, 0, len(raw))
	for _, r := range raw {
		var ev MetricEvent
		if err := json.Unmarshal(r, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events
}
