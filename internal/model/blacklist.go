package model

import "time"

// BlacklistedToken models an entry in the `token_blacklist` table. Each row
// records the jti of a revoked refresh token. Rows are append-only; a token
// is revoked exactly when its jti is present here. ExpiresAt mirrors the
// token's own expiry so stale rows can be pruned.
type BlacklistedToken struct {
	ID        uint64
	JTI       string
	UserID    uint64
	ExpiresAt time.Time
	CreatedAt time.Time
}
