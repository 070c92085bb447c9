package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Insert-if-absent then re-select avoids a race on concurrent startup.
func GetJWTSecret(ctx context.Context, q sqlx.ExtContext) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := q.ExecContext(ctx,
		q.Rebind(`INSERT INTO settings (key, value) VALUES ('jwt_secret', ?) ON CONFLICT (key) DO NOTHING`),
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	// Either our insert or the existing value.
	var secret string
	err = sqlx.GetContext(ctx, q, &secret, `SELECT value FROM settings WHERE key = 'jwt_secret'`)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}
