package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"note-shelf/internal/services/auth"
)

// UsersRepo implements auth.UsersRepo on PostgreSQL.
type UsersRepo struct {
	pool *pgxpool.Pool
}

// NewUsersRepo returns a users repository backed by pool.
func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

// Create inserts user, reporting auth.ErrDuplicate on an email collision.
func (r *UsersRepo) Create(ctx context.Context, user *auth.User) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrDuplicate
	}
	return err
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`, email)
}

func (r *UsersRepo) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return r.findOne(ctx, `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) findOne(ctx context.Context, query string, arg string) (*auth.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var u auth.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if isNoRows(err) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
