package auth

import "assetvault/internal/domain/models"

// JWTVerifier validates bearer tokens.
// The middleware only depends on this interface.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier
	Close() error
}
