package sbi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Context key type for storing claims
type contextKey string

const claimsContextKey contextKey = "token_claims"

// GetTokenClaims retrieves validated token claims from the request
// context. Returns nil if no claims are present.
//
// This function should only be called within handler code that runs after
// the RequireToken middleware has processed the request.
func GetTokenClaims(ctx context.Context) *TokenClaims {
	claims, ok := ctx.Value(claimsContextKey).(*TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// extractBearerToken extracts the token from a Bearer Authorization header.
// Returns the token string and true if successful, or empty string and false if not.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	return parts[1], true
}

// RequireToken is a middleware that validates Bearer tokens and checks the
// required scope. Valid claims are stored in the request context. A nil
// token service disables enforcement entirely.
//
// Missing or invalid tokens produce 401; a valid token lacking the scope
// produces 403.
func RequireToken(ts *TokenService, requiredScope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if ts == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				Unauthorized(w, "Authorization header with Bearer token required")
				return
			}

			claims, err := ts.ValidateToken(tokenString)
			if err != nil {
				if errors.Is(err, ErrExpiredToken) {
					Unauthorized(w, "token has expired")
					return
				}
				Unauthorized(w, "invalid token")
				return
			}

			if requiredScope != "" && !claims.HasScope(requiredScope) {
				Forbidden(w, "token does not grant scope "+requiredScope)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
