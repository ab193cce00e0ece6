package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"note-shelf/internal/services/auth"
)

// RefreshTokensRepo implements auth.RefreshTokensRepo on PostgreSQL.
type RefreshTokensRepo struct {
	pool *pgxpool.Pool
}

// NewRefreshTokensRepo returns a refresh token repository backed by pool.
func NewRefreshTokensRepo(pool *pgxpool.Pool) *RefreshTokensRepo {
	return &RefreshTokensRepo{pool: pool}
}

func (r *RefreshTokensRepo) Create(ctx context.Context, t *auth.RefreshToken) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
	return err
}

func (r *RefreshTokensRepo) FindActive(ctx context.Context, tokenHash string, now time.Time) (*auth.RefreshToken, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var t auth.RefreshToken
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, token_hash, expires_at, created_at, revoked_at
		   FROM refresh_tokens
		  WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2`,
		tokenHash, now,
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt, &t.RevokedAt)
	if isNoRows(err) {
		return nil, auth.ErrRefreshTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Revoke marks the token revoked if it still is active.
func (r *RefreshTokensRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrRefreshTokenNotFound
	}
	return nil
}
