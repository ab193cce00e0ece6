package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"

	"note-shelf/internal/config"
	"note-shelf/internal/utils/crypto"
	"note-shelf/internal/utils/validation"
)

// Service handles authentication business logic
type Service struct {
	users    UsersRepo
	tokens   RefreshTokensRepo
	issuer   *TokenIssuer
	validate *validator.Validate
	config   config.Config
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a new auth service
func NewService(users UsersRepo, tokens RefreshTokensRepo, v *validator.Validate, cfg config.Config, log *slog.Logger) *Service {
	crypto.PrepareBurn(cfg.BcryptCost)
	return &Service{
		users:    users,
		tokens:   tokens,
		issuer:   NewTokenIssuer(cfg.SigningSecret(), time.Duration(cfg.AccessTokenMinutes)*time.Minute),
		validate: v,
		config:   cfg,
		log:      log,
		now:      time.Now,
	}
}

// Issuer returns the access token issuer shared with the HTTP middleware.
func (s *Service) Issuer() *TokenIssuer {
	return s.issuer
}

// Register creates an account and signs the new user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validation.Describe(err))
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrDuplicateIdentity
	case err != nil && !errors.Is(err, ErrUserNotFound):
		s.log.Error("failed to look up user", "error", err)
		return nil, fmt.Errorf("look up user: %w", err)
	}

	hash, err := crypto.HashPassword(req.Password, s.config.BcryptCost)
	if err != nil {
		s.log.Error("failed to hash password", "error", err)
		return nil, errors.New("failed to process password")
	}

	now := s.now().UTC()
	user := &User{
		ID:           ulid.Make().String(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		s.log.Error("failed to create user", "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return s.signIn(ctx, user)
}

// Login verifies credentials and issues a token pair. Unknown email and wrong
// password produce the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			crypto.BurnCompare(req.Password, s.config.BcryptCost)
			return nil, ErrInvalidCredentials
		}
		s.log.Error("failed to find user by email", "error", err)
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := crypto.CheckPassword(req.Password, user.PasswordHash); err != nil {
		s.log.Debug("password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return s.signIn(ctx, user)
}

// ResolveToken turns a bearer access token into the caller's identity.
func (s *Service) ResolveToken(raw string) (Identity, error) {
	return s.issuer.Parse(raw)
}

// Refresh exchanges an active refresh token for a new access token. With
// rotation enabled the presented token is revoked and replaced.
func (s *Service) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	if raw == "" {
		return nil, ErrInvalidRefreshToken
	}
	now := s.now().UTC()

	stored, err := s.tokens.FindActive(ctx, HashRefreshToken(raw), now)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.log.Error("failed to find refresh token", "error", err)
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	access, err := s.issuer.Issue(user.identity())
	if err != nil {
		s.log.Error("failed to generate token", "error", err)
		return nil, err
	}

	if !s.config.RefreshTokenRotate {
		return &TokenPair{Access: access, Refresh: raw}, nil
	}

	if err := s.tokens.Revoke(ctx, stored.ID, now); err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			// lost a race with a concurrent refresh of the same token
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	refresh, err := s.storeRefreshToken(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// SignOut revokes one of the caller's refresh tokens. Tokens belonging to
// someone else are treated as unknown.
func (s *Service) SignOut(ctx context.Context, id Identity, raw string) error {
	if raw == "" {
		return ErrInvalidRefreshToken
	}
	now := s.now().UTC()

	stored, err := s.tokens.FindActive(ctx, HashRefreshToken(raw), now)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return ErrInvalidRefreshToken
		}
		return fmt.Errorf("find refresh token: %w", err)
	}
	if stored.UserID != id.UserID {
		return ErrInvalidRefreshToken
	}

	if err := s.tokens.Revoke(ctx, stored.ID, now); err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return ErrInvalidRefreshToken
		}
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	s.log.Info("refresh token revoked", "user_id", id.UserID)
	return nil
}

func (s *Service) signIn(ctx context.Context, user *User) (*AuthResponse, error) {
	access, err := s.issuer.Issue(user.identity())
	if err != nil {
		s.log.Error("failed to generate token", "error", err)
		return nil, err
	}

	refresh, err := s.storeRefreshToken(ctx, user.ID, s.now().UTC())
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:   user.identity(),
		Tokens: TokenPair{Access: access, Refresh: refresh},
	}, nil
}

func (s *Service) storeRefreshToken(ctx context.Context, userID string, now time.Time) (string, error) {
	raw, digest, err := newRefreshToken()
	if err != nil {
		return "", err
	}

	token := &RefreshToken{
		ID:        ulid.Make().String(),
		UserID:    userID,
		TokenHash: digest,
		ExpiresAt: now.Add(time.Duration(s.config.RefreshTokenDays) * 24 * time.Hour),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		s.log.Error("failed to store refresh token", "error", err, "user_id", userID)
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return raw, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
