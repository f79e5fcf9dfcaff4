// Package auth validates HS256 bearer tokens minted by the identity provider.
// This service never issues sessions; it only checks signatures and expiry.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidToken covers malformed, mis-signed, and expired tokens alike so
// callers cannot distinguish why validation failed.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the subset of the JWT payload this service reads.
type Claims struct {
	Subject string
	Expires time.Time
}

type payload struct {
	Sub string `json:"sub"`
	Exp int64  `json:"exp,omitempty"`
}

var headerSegment = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

// Sign mints an HS256 token. Used by tests and development tooling; the
// production issuer lives elsewhere.
func Sign(claims Claims, secret string) (string, error) {
	p := payload{Sub: claims.Subject}
	if !claims.Expires.IsZero() {
		p.Exp = claims.Expires.Unix()
	}
	body, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	signing := headerSegment + "." + base64.RawURLEncoding.EncodeToString(body)
	return signing + "." + signature(signing, secret), nil
}

// Verify checks the signature and expiry and returns the claims.
func Verify(token, secret string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, fmt.Errorf("%w: want 3 segments, got %d", ErrInvalidToken, len(parts))
	}
	signing := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(signature(signing, secret)), []byte(parts[2])) {
		return Claims{}, fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	}
	body, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if p.Sub == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	claims := Claims{Subject: p.Sub}
	if p.Exp != 0 {
		claims.Expires = time.Unix(p.Exp, 0)
		if time.Now().After(claims.Expires) {
			return Claims{}, fmt.Errorf("%w: expired", ErrInvalidToken)
		}
	}
	return claims, nil
}

func signature(signing, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signing))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
