package auth

import (
	"context"
	"time"
)

// UsersRepo defines the interface for user repository operations
type UsersRepo interface {
	// Create returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *User) error
	// FindByEmail and FindByID return ErrUserNotFound when nothing matches.
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// RefreshTokensRepo persists refresh token digests.
type RefreshTokensRepo interface {
	Create(ctx context.Context, token *RefreshToken) error
	// FindActive returns the unrevoked token with the given digest that
	// expires after now, or ErrRefreshTokenNotFound.
	FindActive(ctx context.Context, tokenHash string, now time.Time) (*RefreshToken, error)
	// Revoke marks an active token revoked. It returns ErrRefreshTokenNotFound
	// when the token is unknown or already revoked.
	Revoke(ctx context.Context, id string, at time.Time) error
}
