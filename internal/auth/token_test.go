package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-1", Expires: time.Now().Add(time.Hour)}, "secret")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := Verify(token, "secret")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected subject user-1, got %q", claims.Subject)
	}
}

func TestVerifyNoExpiry(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-1"}, "secret")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Verify(token, "secret"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-1", Expires: time.Now().Add(-time.Minute)}, "secret")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Verify(token, "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-1"}, "secret")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Verify(token, "other-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	token, err := Sign(Claims{Subject: "user-1"}, "secret")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[1] = parts[1] + "x"
	if _, err := Verify(strings.Join(parts, "."), "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	for _, token := range []string{"", "a.b", "a.b.c.d", "not-a-token"} {
		if _, err := Verify(token, "secret"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}
