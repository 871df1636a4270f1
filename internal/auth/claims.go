package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

// TokenTypeAccess is the only token type this service accepts. The auth
// service also mints refresh tokens with the same claims shape; those are
// rejected by the token_type check in Verify.
const TokenTypeAccess TokenType = "access"

// Claims are the only supported JWT claims shape for this service.
// These are API session tokens, not media-room credentials; room tokens are
// issued separately by internal/media with their own claims shape.
type Claims struct {
	jwt.RegisteredClaims

	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	TokenType   TokenType `json:"token_type"`
}
