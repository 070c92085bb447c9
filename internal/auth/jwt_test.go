package auth

import (
	"testing"
	"time"

	"github.com/erazemk/opsledger/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	issuer := NewIssuer("test-secret-key", time.Hour)

	token, err := issuer.Generate(1, "admin", model.RoleAdmin)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected user_id 1, got %d", claims.UserID)
	}
	if claims.Username != "admin" {
		t.Errorf("expected username 'admin', got %q", claims.Username)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", claims.Role)
	}
	if claims.ID == "" {
		t.Error("expected token id")
	}
}

func TestTokenIDsUnique(t *testing.T) {
	issuer := NewIssuer("secret", 0)

	a, _ := issuer.Generate(1, "admin", model.RoleAdmin)
	b, _ := issuer.Generate(1, "admin", model.RoleAdmin)
	ca, _ := issuer.Validate(a)
	cb, _ := issuer.Validate(b)
	if ca.ID == cb.ID {
		t.Errorf("expected distinct token ids, got %q twice", ca.ID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := NewIssuer("secret1", 0).Generate(1, "admin", model.RoleAdmin)

	if _, err := NewIssuer("secret2", 0).Validate(token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	if _, err := NewIssuer("secret", 0).Validate("not-a-token"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	issuer := NewIssuer("secret", -time.Hour)
	if issuer.TTL() != DefaultTTL {
		t.Fatalf("expected non-positive ttl to fall back to default, got %v", issuer.TTL())
	}

	short := &Issuer{secret: []byte("secret"), ttl: -time.Minute}
	token, _ := short.Generate(1, "test", model.RoleUser)
	if _, err := short.Validate(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewIssuer("test", 2*time.Hour)
	token, _ := issuer.Generate(1, "test", model.RoleUser)
	claims, _ := issuer.Validate(token)

	diff := time.Now().Add(2 * time.Hour).Sub(claims.ExpiresAt.Time)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
