package auth

import (
	"time"
)

// User is a registered account. Users are never updated or deleted.
type User struct {
	ID           string    `bson:"_id" json:"id" example:"01J0F6Q2G7Y3B8N4K5M6P7R8S9"`
	Email        string    `bson:"email" json:"email" example:"test@example.com"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	UserID string `json:"id" example:"01J0F6Q2G7Y3B8N4K5M6P7R8S9"`
	Email  string `json:"email" example:"test@example.com"`
}

// IsZero reports whether no identity was resolved.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

func (u *User) identity() Identity {
	return Identity{UserID: u.ID, Email: u.Email}
}

// TokenPair holds a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	Access  string `json:"access" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Refresh string `json:"refresh" example:"q2H9p0m2dRk1cW3h4Z6yVb8nJfL0sT5uA7eX9iO1gQw"`
}

// RefreshToken is the persisted form of a refresh token. Only the SHA-256
// digest of the raw value is stored.
type RefreshToken struct {
	ID        string     `bson:"_id"`
	UserID    string     `bson:"user_id"`
	TokenHash string     `bson:"token_hash"`
	ExpiresAt time.Time  `bson:"expires_at"`
	CreatedAt time.Time  `bson:"created_at"`
	RevokedAt *time.Time `bson:"revoked_at,omitempty"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" validate:"required,password" example:"pw123456"`
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" example:"test@example.com"`
	Password string `json:"password" example:"pw123456"`
}

// RefreshRequest carries a raw refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh" validate:"required" example:"q2H9p0m2dRk1cW3h4Z6yVb8nJfL0sT5uA7eX9iO1gQw"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User   Identity  `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// RefreshResponse is returned by refresh.
type RefreshResponse struct {
	Tokens TokenPair `json:"tokens"`
}
