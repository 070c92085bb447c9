package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/opsledger/internal/db"
)

func TestRevokeAndCheckToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	storekeeper, manager := uuid.NewString(), uuid.NewString()

	revoked, err := IsTokenRevoked(ctx, database, storekeeper)
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("fresh session should not be revoked")
	}

	if err := RevokeToken(ctx, database, storekeeper, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	for jti, want := range map[string]bool{storekeeper: true, manager: false} {
		revoked, err := IsTokenRevoked(ctx, database, jti)
		if err != nil {
			t.Fatalf("IsTokenRevoked: %v", err)
		}
		if revoked != want {
			t.Errorf("IsTokenRevoked(%s) = %v, want %v", jti, revoked, want)
		}
	}
}

func TestRevokeTokenIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	jti := uuid.NewString()

	// A double logout must not fail.
	for i := range 2 {
		if err := RevokeToken(ctx, database, jti, time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("RevokeToken #%d: %v", i+1, err)
		}
	}
}

func TestRevokeTokenPurgesExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	expired, live := uuid.NewString(), uuid.NewString()

	if err := RevokeToken(ctx, database, expired, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("RevokeToken expired: %v", err)
	}
	if err := RevokeToken(ctx, database, live, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken live: %v", err)
	}

	var count int
	if err := database.GetContext(ctx, &count, `SELECT COUNT(*) FROM revoked_tokens`); err != nil {
		t.Fatalf("count revocations: %v", err)
	}
	if count != 1 {
		t.Errorf("expected the expired revocation to be purged, %d rows left", count)
	}
	if revoked, _ := IsTokenRevoked(ctx, database, live); !revoked {
		t.Error("live revocation was purged")
	}
}
