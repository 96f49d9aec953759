package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrAlreadyRevoked is returned when a jti is inserted into the blacklist a
// second time. Revocation is idempotent at the ledger level; callers decide
// whether to surface the duplicate.
var ErrAlreadyRevoked = errors.New("token already revoked")

// BlacklistRepo persists the revocation ledger for refresh tokens. Rows are
// append-only: revoking means inserting the token's jti, checking means a
// membership lookup.
type BlacklistRepo struct{ DB *sql.DB }

func NewBlacklistRepo(db *sql.DB) *BlacklistRepo { return &BlacklistRepo{DB: db} }

// Insert adds a revoked jti to the ledger. The unique index on jti makes a
// concurrent double-revoke a benign duplicate-key condition, reported as
// ErrAlreadyRevoked.
func (r *BlacklistRepo) Insert(ctx context.Context, jti string, userID uint64, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO token_blacklist (jti, user_id, expires_at) VALUES (?,?,?)",
		jti, userID, expiresAt)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrAlreadyRevoked
		}
		return err
	}
	return nil
}

// Contains reports whether a jti has been revoked.
func (r *BlacklistRepo) Contains(ctx context.Context, jti string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM token_blacklist WHERE jti=? LIMIT 1", jti).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PruneExpired removes ledger rows whose tokens have expired anyway. Expired
// refresh tokens fail signature-level validation, so keeping their jtis adds
// nothing.
func (r *BlacklistRepo) PruneExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM token_blacklist WHERE expires_at < UTC_TIMESTAMP()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
