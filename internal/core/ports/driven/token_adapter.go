package driven

// TokenClaims are the claims carried by an API access token
type TokenClaims struct {
	Subject   string
	IssuedAt  int64
	ExpiresAt int64
}

// TokenAdapter signs and verifies API access tokens. Account management
// lives outside the engine; this port only covers the service tokens that
// guard the analysis API.
type TokenAdapter interface {
	// GenerateToken creates a signed token from claims.
	GenerateToken(claims *TokenClaims) (string, error)

	// ParseToken validates a token and extracts its claims.
	// Returns domain.ErrTokenExpired or domain.ErrTokenInvalid on failure.
	ParseToken(token string) (*TokenClaims, error)
}
