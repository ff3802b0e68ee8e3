package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iho/cambio/internal/domain"
)

// Tokens are only accepted when both values match.
const (
	Issuer   = "cambio"
	Audience = "cambio-api"
)

// clockSkew tolerated between the issuing and the verifying instance.
const clockSkew = 5 * time.Second

// Claims identify the acting back-office user. The subject is the user id.
type Claims struct {
	Email string      `json:"email"`
	Name  string      `json:"name,omitempty"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// User rebuilds the acting user from the claims.
func (c *Claims) User() *domain.User {
	return &domain.User{
		ID:     c.Subject,
		Email:  c.Email,
		Name:   c.Name,
		Role:   c.Role,
		Active: true,
	}
}

// Token is a signed access token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// JWTManager issues and verifies HS256 access tokens.
type JWTManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for user.
func (m *JWTManager) Issue(user *domain.User) (Token, error) {
	now := m.now().UTC()
	expires := now.Add(m.ttl)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}).SignedString(m.key)
	if err != nil {
		return Token{}, err
	}

	return Token{Value: signed, ExpiresAt: expires}, nil
}

// Verify checks signature, issuer, audience and lifetime. Expired tokens
// map to domain.ErrExpiredToken and every other failure to
// domain.ErrInvalidToken.
func (m *JWTManager) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrExpiredToken
	case err != nil:
		return nil, domain.ErrInvalidToken
	}

	if claims.Subject == "" || !claims.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
