package auth

import (
	"errors"
	"testing"
	"time"
)

func testConfig() *JWTConfig {
	return &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateToken(cfg, "guest_0123456789ab", "Alice", true)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := ValidateToken(cfg, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Subject != "guest_0123456789ab" || claims.DisplayName != "Alice" || !claims.IsGuest {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(testConfig(), "p1", "", false)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	other := testConfig()
	other.Secret = []byte("another-secret")
	if _, err := ValidateToken(other, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenRejectsWrongAudienceAndIssuer(t *testing.T) {
	token, err := GenerateToken(testConfig(), "p1", "", false)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	cfg := testConfig()
	cfg.Audience = "somebody-else"
	if _, err := ValidateToken(cfg, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for audience, got %v", err)
	}

	cfg = testConfig()
	cfg.Issuer = "somebody-else"
	if _, err := ValidateToken(cfg, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for issuer, got %v", err)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = -time.Minute

	token, err := GenerateToken(cfg, "p1", "", false)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := ValidateToken(cfg, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenMissing(t *testing.T) {
	if _, err := ValidateToken(testConfig(), ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestGenerateTokenRequiresParticipant(t *testing.T) {
	if _, err := GenerateToken(testConfig(), "", "", false); err == nil {
		t.Fatal("expected error for empty participant id")
	}
}
