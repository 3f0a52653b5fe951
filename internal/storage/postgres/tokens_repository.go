package postgres

import (
	"context"
	"fmt"

	"github.com/gatherly/server/internal/domain/tokens"
)

var _ tokens.Repository = (*TokenRepository)(nil)

// Insert adds a refresh token jti to the revocation set. Expired entries
// are purged on the way in; there is no background task for it.
func (r *TokenRepository) Insert(ctx context.Context, params tokens.BlacklistParams) error {
	q := r.queryer()

	if _, err := q.Exec(ctx, `DELETE FROM token_blacklist WHERE expires_at < now()`); err != nil {
		return fmt.Errorf("purge expired blacklist entries: %w", err)
	}

	_, err := q.Exec(ctx, `
INSERT INTO token_blacklist (jti, user_id, expires_at, blacklisted_at)
VALUES ($1, $2, $3, $4)
`,
		params.JTI,
		params.UserID,
		params.ExpiresAt,
		params.BlacklistedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return tokens.ErrBlacklisted
		}
		return fmt.Errorf("insert blacklist entry: %w", err)
	}
	return nil
}

func (r *TokenRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1)`, jti,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return exists, nil
}
