package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Anti-forgery tokens gate the public ingest endpoint. The marketing
// site fetches a token and echoes it back with each beacon, which keeps
// third-party pages from posting events cross-site. Tokens are
// stateless: an HMAC over "{issued-at}.{nonce}" with a replay window,
// so no server-side session is needed.

var (
	// ErrTokenExpired is returned when the token is outside its window.
	ErrTokenExpired = errors.New("token outside validity window")
	// ErrTokenInvalid is returned for malformed or forged tokens.
	ErrTokenInvalid = errors.New("invalid token")
)

// DefaultTokenTTL is the default token validity window.
const DefaultTokenTTL = 15 * time.Minute

// TokenIssuer mints and verifies ingest tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. A non-positive ttl falls back
// to DefaultTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NewTokenIssuerAt creates a TokenIssuer with an injected clock.
func NewTokenIssuerAt(secret string, ttl time.Duration, now func() time.Time) *TokenIssuer {
	t := NewTokenIssuer(secret, ttl)
	t.now = now
	return t
}

// TTL returns the validity window.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue mints a token of the form "{issued-at}.{nonce}.{signature}".
func (t *TokenIssuer) Issue() string {
	issuedAt := t.now().Unix()
	nonce := uuid.New().String()
	return fmt.Sprintf("%d.%s.%s", issuedAt, nonce, t.sign(issuedAt, nonce))
}

// Verify checks a presented token's signature and validity window.
func (t *TokenIssuer) Verify(token string) error {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 {
		return ErrTokenInvalid
	}

	issuedAt, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrTokenInvalid
	}

	expected := t.sign(issuedAt, parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return ErrTokenInvalid
	}

	now := t.now().Unix()
	if now-issuedAt > int64(t.ttl.Seconds()) || issuedAt > now+60 {
		return ErrTokenExpired
	}
	return nil
}

func (t *TokenIssuer) sign(issuedAt int64, nonce string) string {
	mac := hmac.New(sha256.New, t.secret)
	fmt.Fprintf(mac, "%d.%s", issuedAt, nonce)
	return hex.EncodeToString(mac.Sum(nil))
}
