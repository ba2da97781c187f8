package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAdminKey_Format(t *testing.T) {
	t.Parallel()

	hash, err := HashAdminKey("fp_admin_abc123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash = %q, want PHC argon2id format", hash)
	}
}

func TestVerifyAdminKey(t *testing.T) {
	t.Parallel()

	hash, err := HashAdminKey("fp_admin_abc123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := VerifyAdminKey("fp_admin_abc123", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Error("correct key rejected")
	}

	ok, err = VerifyAdminKey("wrong-key", hash)
	if err != nil {
		t.Fatalf("verify wrong key: %v", err)
	}
	if ok {
		t.Error("wrong key accepted")
	}
}

func TestHashAdminKey_UniqueSalt(t *testing.T) {
	t.Parallel()

	h1, err := HashAdminKey("same-key")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashAdminKey("same-key")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same key should differ by salt")
	}
}

func TestVerifyAdminKey_MalformedHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not phc", "plainhash"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"bad params", "$argon2id$v=19$oops$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := VerifyAdminKey("key", tt.hash); !errors.Is(err, ErrInvalidHash) {
				t.Errorf("VerifyAdminKey hash %q: err = %v, want ErrInvalidHash", tt.hash, err)
			}
		})
	}
}
