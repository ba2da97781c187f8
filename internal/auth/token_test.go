package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("test-secret", time.Minute)

	token := issuer.Issue()
	if err := issuer.Verify(token); err != nil {
		t.Fatalf("freshly issued token rejected: %v", err)
	}
}

func TestTokenIssuer_Format(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("test-secret", time.Minute)

	token := issuer.Issue()
	if parts := strings.SplitN(token, ".", 3); len(parts) != 3 {
		t.Fatalf("token = %q, want three dot-separated parts", token)
	}
}

func TestTokenIssuer_RejectsForgery(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("test-secret", time.Minute)
	other := NewTokenIssuer("other-secret", time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "nope"},
		{"two parts", "123.nonce"},
		{"bad timestamp", "abc.nonce.deadbeef"},
		{"wrong secret", other.Issue()},
		{"tampered signature", issuer.Issue() + "00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := issuer.Verify(tt.token); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("Verify(%q) = %v, want ErrTokenInvalid", tt.token, err)
			}
		})
	}
}

func TestTokenIssuer_Expiry(t *testing.T) {
	t.Parallel()

	issued := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	clock := issued
	issuer := NewTokenIssuerAt("test-secret", time.Minute, func() time.Time { return clock })

	token := issuer.Issue()

	clock = issued.Add(30 * time.Second)
	if err := issuer.Verify(token); err != nil {
		t.Fatalf("token rejected inside window: %v", err)
	}

	clock = issued.Add(2 * time.Minute)
	if err := issuer.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired token: got %v, want ErrTokenExpired", err)
	}
}

func TestTokenIssuer_RejectsFuture(t *testing.T) {
	t.Parallel()

	clock := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuerAt("test-secret", time.Minute, func() time.Time { return clock })

	token := issuer.Issue()

	// A token "issued" well in the future is rejected even though the
	// signature is valid.
	clock = clock.Add(-10 * time.Minute)
	if err := issuer.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("future token: got %v, want ErrTokenExpired", err)
	}
}

func TestNewTokenIssuer_DefaultTTL(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("s", 0)
	if issuer.TTL() != DefaultTokenTTL {
		t.Errorf("TTL = %v, want %v", issuer.TTL(), DefaultTokenTTL)
	}
}
