package sbi

import (
	"errors"
	"testing"
	"time"
)

const testTokenSecret = "test-secret-key-must-be-32-chars!"

func TestNewTokenService_ValidConfig(t *testing.T) {
	service, err := NewTokenService(TokenConfig{
		Secret:   testTokenSecret,
		Issuer:   "nrf-instance-1",
		TokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if service == nil {
		t.Fatal("Expected service to be non-nil")
	}
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService(TokenConfig{Secret: "short"})
	if !errors.Is(err, ErrInvalidSecretLength) {
		t.Fatalf("Expected ErrInvalidSecretLength, got: %v", err)
	}
}

func TestNewTokenService_Defaults(t *testing.T) {
	service, err := NewTokenService(TokenConfig{Secret: testTokenSecret})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if service.TokenTTL() != time.Hour {
		t.Errorf("Expected default TTL 1h, got %v", service.TokenTTL())
	}
}

func TestIssueAndValidateToken(t *testing.T) {
	service, _ := NewTokenService(TokenConfig{
		Secret:   testTokenSecret,
		Issuer:   "nrf-instance-1",
		TokenTTL: time.Hour,
	})

	token, expiresAt, err := service.IssueToken("nf-client-1a2b3c4d", "nnrf-nfm nnrf-disc")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Errorf("Expected expiry about an hour out, got %v", until)
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if claims.Subject != "nf-client-1a2b3c4d" {
		t.Errorf("Expected subject 'nf-client-1a2b3c4d', got %q", claims.Subject)
	}
	if claims.Issuer != "nrf-instance-1" {
		t.Errorf("Expected issuer 'nrf-instance-1', got %q", claims.Issuer)
	}
	if claims.Scope != "nnrf-nfm nnrf-disc" {
		t.Errorf("Expected scope 'nnrf-nfm nnrf-disc', got %q", claims.Scope)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "nrf" {
		t.Errorf("Expected audience ['nrf'], got %v", claims.Audience)
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	service, _ := NewTokenService(TokenConfig{Secret: testTokenSecret})

	_, err := service.ValidateToken("not-a-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Expected ErrInvalidToken, got: %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	service, _ := NewTokenService(TokenConfig{
		Secret:   testTokenSecret,
		TokenTTL: -time.Minute,
	})

	token, _, err := service.IssueToken("nf-client-expired", "nnrf-disc")
	if err != nil {
		t.Fatalf("Expected no error issuing token, got: %v", err)
	}

	_, err = service.ValidateToken(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("Expected ErrExpiredToken, got: %v", err)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer, _ := NewTokenService(TokenConfig{Secret: testTokenSecret})
	verifier, _ := NewTokenService(TokenConfig{Secret: "another-secret-key-that-is-32-chars"})

	token, _, _ := issuer.IssueToken("nf-client-1", "nnrf-disc")

	_, err := verifier.ValidateToken(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Expected ErrInvalidToken, got: %v", err)
	}
}

func TestTokenClaims_HasScope(t *testing.T) {
	tests := []struct {
		scope    string
		required string
		expected bool
	}{
		{"nnrf-nfm nnrf-disc", "nnrf-nfm", true},
		{"nnrf-nfm nnrf-disc", "nnrf-disc", true},
		{"nnrf-disc", "nnrf-nfm", false},
		{"", "nnrf-nfm", false},
		{"nnrf-nfm-extended", "nnrf-nfm", false},
	}

	for _, tc := range tests {
		claims := &TokenClaims{Scope: tc.scope}
		if claims.HasScope(tc.required) != tc.expected {
			t.Errorf("HasScope(%q) with scope %q: expected %v", tc.required, tc.scope, tc.expected)
		}
	}
}
