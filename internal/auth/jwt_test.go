package auth

import (
	"testing"
	"time"

	"voice-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:   "secret",
		JWTIssuer:   "issuer",
		JWTAudience: "aud",
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

// sign mints a token the way the platform auth service does: same claims
// shape, same shared secret.
func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func accessClaims(userID, displayName string, now time.Time, ttl time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "issuer",
			Audience:  jwt.ClaimStrings{"aud"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:      userID,
		DisplayName: displayName,
		TokenType:   TokenTypeAccess,
	}
}

func TestVerify_AcceptsAccessToken(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()

	tok := sign(t, "secret", accessClaims("user-1", "Alice", now, 15*time.Minute))

	claims, err := m.Verify(tok, TokenTypeAccess, now.Add(1*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.DisplayName != "Alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerify_RejectsWrongTokenType(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()

	c := accessClaims("u", "", now, time.Hour)
	c.TokenType = TokenType("refresh")

	if _, err := m.Verify(sign(t, "secret", c), TokenTypeAccess, now); err == nil {
		t.Fatalf("expected token_type mismatch")
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()

	tok := sign(t, "secret", accessClaims("u", "", now, time.Minute))

	if _, err := m.Verify(tok, TokenTypeAccess, now.Add(2*time.Hour)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()

	tok := sign(t, "other-secret", accessClaims("u", "", now, time.Hour))

	if _, err := m.Verify(tok, TokenTypeAccess, now); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestVerify_RejectsMissingUserID(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()

	tok := sign(t, "secret", accessClaims("", "", now, time.Hour))

	if _, err := m.Verify(tok, TokenTypeAccess, now); err == nil {
		t.Fatalf("expected user_id error")
	}
}
