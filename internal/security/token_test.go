package security

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignAndParse_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := "super-secret"
	userID := "user-123"

	tok, err := SignAccessToken(secret, userID, time.Hour)
	if err != nil {
		t.Fatalf("SignAccessToken error: %v", err)
	}

	got, err := ParseAccessToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if got != userID {
		t.Fatalf("userID mismatch: got %q want %q", got, userID)
	}
}

func TestParseAccessToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := SignAccessToken("secret", "u1", -1*time.Second)
	if err != nil {
		t.Fatalf("SignAccessToken error: %v", err)
	}

	_, err = ParseAccessToken(tok, "secret")
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := SignAccessToken("right-secret", "u2", time.Hour)
	if err != nil {
		t.Fatalf("SignAccessToken error: %v", err)
	}

	_, err = ParseAccessToken(tok, "wrong-secret")
	if !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestParseAccessToken_TamperedPayload(t *testing.T) {
	t.Parallel()

	tok, err := SignAccessToken("secret", "u3", time.Hour)
	if err != nil {
		t.Fatalf("SignAccessToken error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tok)
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	// Swap the asserted user id for somebody else's.
	tampered := strings.Replace(string(payload), "u3", "u4", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tampered))

	got, err := ParseAccessToken(strings.Join(parts, "."), "secret")
	if !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v (userID %q)", err, got)
	}
	if got != "" {
		t.Fatalf("tampered token must not resolve a user id, got %q", got)
	}
}

func TestParseAccessToken_TamperedSignature(t *testing.T) {
	t.Parallel()

	tok, err := SignAccessToken("secret", "u5", time.Hour)
	if err != nil {
		t.Fatalf("SignAccessToken error: %v", err)
	}

	parts := strings.Split(tok, ".")
	sig := []byte(parts[2])
	mid := len(sig) / 2
	if sig[mid] == 'A' {
		sig[mid] = 'B'
	} else {
		sig[mid] = 'A'
	}
	parts[2] = string(sig)

	_, err = ParseAccessToken(strings.Join(parts, "."), "secret")
	if !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestParseAccessToken_Malformed(t *testing.T) {
	t.Parallel()

	for _, tok := range []string{"", "not.a.jwt", "garbage"} {
		_, err := ParseAccessToken(tok, "secret")
		if !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", tok, err)
		}
	}
}

func TestSignAccessToken_Unique(t *testing.T) {
	t.Parallel()

	a, err := SignAccessToken("secret", "u6", time.Hour)
	if err != nil {
		t.Fatalf("SignAccessToken error: %v", err)
	}
	b, err := SignAccessToken("secret", "u6", time.Hour)
	if err != nil {
		t.Fatalf("SignAccessToken error: %v", err)
	}
	if a == b {
		t.Fatal("two tokens for the same user must not be identical")
	}
}
