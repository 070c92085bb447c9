package main

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/opsledger/internal/db"
	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 16 {
		t.Errorf("expected 16 characters, got %d", len(a))
	}
	if err := model.ValidatePassword(a); err != nil {
		t.Errorf("generated password rejected: %v", err)
	}

	b, _ := generatePassword(16)
	if a == b {
		t.Error("expected two generated passwords to differ")
	}
}

func TestBootstrapAdminOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	password, err := bootstrapAdmin(ctx, database, "Admin")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if password == "" {
		t.Fatal("expected a generated password on empty database")
	}

	u, err := store.GetUserByUsername(ctx, database, "Admin")
	if err != nil || u == nil {
		t.Fatalf("expected admin user, got %v, %v", u, err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("expected admin role, got %q", u.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		t.Error("stored hash does not match printed password")
	}

	again, err := bootstrapAdmin(ctx, database, "Admin")
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if again != "" {
		t.Error("expected no new admin when users exist")
	}
}
