package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"note-shelf/cmd/server/handlers/handlerutil"
	"note-shelf/cmd/server/handlers/httperr"
	"note-shelf/internal/logger"
	"note-shelf/internal/services/auth"
)

// AuthService defines the interface for auth service
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error)
	Refresh(ctx context.Context, rawRefreshToken string) (*auth.TokenPair, error)
	SignOut(ctx context.Context, id auth.Identity, rawRefreshToken string) error
}

// Handlers contains the auth HTTP handlers
type Handlers struct {
	authService AuthService
}

// NewHandlers creates new auth handlers. Request validation happens in the
// service so that every entry point shares the same rules.
func NewHandlers(authService AuthService) *Handlers {
	return &Handlers{authService: authService}
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.RegisterRequest true "Registration request"
// @Success 201 {object} auth.AuthResponse
// @Failure 400 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /auth/register [post]
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse register request body", "handler", "Register", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	resp, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return authError(err, "Register")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles user authentication
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.LoginRequest true "Login request"
// @Success 200 {object} auth.AuthResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /auth/login [post]
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse login request body", "handler", "Login", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return authError(err, "Login")
	}

	return c.JSON(resp)
}

// Refresh handles token refresh requests
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.RefreshRequest true "Refresh token request"
// @Success 200 {object} auth.RefreshResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /auth/refresh [post]
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req auth.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse refresh request body", "handler", "Refresh", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	tokens, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			logger.L().Info("rejected refresh token", "ip", c.IP())
		}
		return authError(err, "Refresh")
	}

	return c.JSON(auth.RefreshResponse{Tokens: *tokens})
}

// SignOut revokes one of the caller's refresh tokens
// @Summary Sign out
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body auth.RefreshRequest true "Refresh token to revoke"
// @Success 204
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /auth/sign-out [post]
func (h *Handlers) SignOut(c *fiber.Ctx) error {
	id, err := handlerutil.Identity(c)
	if err != nil {
		return err
	}

	var req auth.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse sign-out request body", "handler", "SignOut", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}
	if req.RefreshToken == "" {
		return httperr.BadRequest("refresh is required")
	}

	if err := h.authService.SignOut(c.UserContext(), id, req.RefreshToken); err != nil {
		return authError(err, "SignOut")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// authError maps identity service errors onto HTTP errors. Messages of
// client errors are safe to echo; everything else becomes a bare 500.
func authError(err error, handlerName string) error {
	switch {
	case errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrValidation),
		errors.Is(err, auth.ErrDuplicateIdentity):
		logger.L().Info("rejected auth request", "handler", handlerName, "error", err)
		return httperr.BadRequest(err.Error())
	case auth.IsAuthError(err):
		logger.L().Info("authentication failed", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.E{Status: fiber.StatusUnauthorized, Message: err.Error()})
	}

	logger.L().Error("auth service failed", "handler", handlerName, "error", err)
	return httperr.Fail(httperr.ErrInternal)
}
