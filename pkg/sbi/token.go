package sbi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common errors for access token operations.
var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrTokenSigningFailed  = errors.New("failed to sign token")
	ErrInvalidSecretLength = errors.New("token secret must be at least 32 characters")
)

// TokenConfig holds configuration for access token generation.
type TokenConfig struct {
	// Secret is the HMAC signing key. Must be at least 32 characters.
	Secret string

	// Issuer is the token issuer claim, normally the registry instance ID.
	Issuer string

	// Audience is the intended token audience. Default: "nrf".
	Audience string

	// TokenTTL is the lifetime of issued tokens. Default: 1 hour.
	TokenTTL time.Duration
}

// TokenClaims are the claims carried by a registry access token.
type TokenClaims struct {
	jwt.RegisteredClaims

	// Scope is a space-separated list of granted service scopes, for
	// example "nnrf-nfm nnrf-disc".
	Scope string `json:"scope,omitempty"`
}

// HasScope returns true when the token grants the required scope.
func (c *TokenClaims) HasScope(required string) bool {
	for _, scope := range strings.Fields(c.Scope) {
		if scope == required {
			return true
		}
	}
	return false
}

// TokenService issues and validates the HS256 access tokens used on
// registry interfaces.
type TokenService struct {
	config TokenConfig
}

// NewTokenService creates a token service with the given configuration.
func NewTokenService(config TokenConfig) (*TokenService, error) {
	if len(config.Secret) < 32 {
		return nil, ErrInvalidSecretLength
	}

	// Apply defaults
	if config.Audience == "" {
		config.Audience = "nrf"
	}
	if config.TokenTTL == 0 {
		config.TokenTTL = time.Hour
	}

	return &TokenService{config: config}, nil
}

// IssueToken creates a signed token for the given client and scope.
// It returns the signed token and its expiry time.
func (s *TokenService) IssueToken(clientID, scope string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.TokenTTL)

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   clientID,
			Audience:  jwt.ClaimStrings{s.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Scope: scope,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, ErrTokenSigningFailed
	}

	return signedToken, expiresAt, nil
}

// ValidateToken validates a token and returns its claims.
// Returns an error if the token is invalid or expired.
func (s *TokenService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// TokenTTL returns the configured token lifetime.
func (s *TokenService) TokenTTL() time.Duration {
	return s.config.TokenTTL
}
