package cache

import (
	"context"
	"time"
)

// revokedPrefix namespaces revocation entries in Redis.
const revokedPrefix = "revoked:"

// Revoke records a token id as revoked until the token would have expired
// anyway. Entries expire with the token, so the ledger prunes itself.
func (c *Cache) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired, validation rejects it regardless.
		return nil
	}
	return c.client.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether the token id appears in the ledger.
func (c *Cache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
