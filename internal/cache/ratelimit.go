package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"
)

const (
	// rateLimitEventPrefix is the Redis key prefix for ingest rate
	// limit markers. Keys are namespaced by fingerprint AND event
	// type, so limiting is independent per metric type.
	rateLimitEventPrefix = "ratelimit:event:"

	// DefaultEventTTL is the default window during which a client may
	// record at most one event of a given type.
	DefaultEventTTL = 3 * time.Second
)

// Fingerprint derives a stable client identifier from the network
// address and user-agent header.
//
// This is a heuristic, not a security boundary: a client can spoof its
// user-agent, and clients behind NAT or a shared proxy collapse into
// one fingerprint. It exists only to damp accidental or lazy flooding.
func Fingerprint(ip, userAgent string) string {
	if ip == "" && userAgent == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}

// Decision is the result of a rate limit policy pre-check.
type Decision int

// Policy decisions.
const (
	// Abstain defers to the fingerprint marker logic.
	Abstain Decision = iota
	// ForceAllow admits the event regardless of markers.
	ForceAllow
	// ForceDeny rejects the event regardless of markers.
	ForceDeny
)

// Policy is a pluggable pre-check consulted before the marker lookup.
// It can force-allow or force-deny independent of fingerprint state,
// which supports testing and future policy changes without touching
// the limiter itself.
type Policy interface {
	Precheck(ctx context.Context, fingerprint, eventType string) Decision
}

// EventLimiter bounds the rate of ingested events per client by
// setting a short-TTL marker per fingerprint + event type.
type EventLimiter struct {
	cache  *Cache
	ttl    time.Duration
	policy Policy
	logger *slog.Logger
}

// NewEventLimiter creates an EventLimiter. A non-positive ttl falls
// back to DefaultEventTTL.
func NewEventLimiter(cache *Cache, ttl time.Duration, logger *slog.Logger) *EventLimiter {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	return &EventLimiter{
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "cache.ratelimit"),
	}
}

// SetPolicy installs a pre-check policy. Passing nil removes it.
func (l *EventLimiter) SetPolicy(p Policy) {
	l.policy = p
}

// TTL returns the configured marker window.
func (l *EventLimiter) TTL() time.Duration {
	return l.ttl
}

// Allow reports whether the client identified by fingerprint may record
// an event of the given type now. When it returns true a marker is set;
// subsequent calls within the TTL return false.
//
// An empty fingerprint (missing network info) allows by default so a
// proxy misconfiguration cannot silently block all traffic. Redis
// failures also fail open.
func (l *EventLimiter) Allow(ctx context.Context, fingerprint, eventType string) bool {
	if l.policy != nil {
		switch l.policy.Precheck(ctx, fingerprint, eventType) {
		case ForceAllow:
			return true
		case ForceDeny:
			return false
		}
	}

	if fingerprint == "" {
		return true
	}

	key := rateLimitEventPrefix + fingerprint + ":" + eventType
	ok, err := l.cache.client.SetNX(ctx, key, 1, l.ttl).Result()
	if err != nil {
		l.logger.Error("rate limit marker failed", "error", err)
		return true
	}
	return ok
}
