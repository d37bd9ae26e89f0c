package auth

import "seriatim/internal/domain/models"

// JWTVerifier validates bearer tokens. The middleware depends on this
// rather than on a key source.
type JWTVerifier interface {
	// VerifyToken returns the claims of a valid token, or domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
