package handlerutil

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"note-shelf/cmd/server/ctxkeys"
	"note-shelf/cmd/server/handlers/httperr"
	"note-shelf/internal/logger"
	"note-shelf/internal/services/auth"
	"note-shelf/internal/services/notes"
	"note-shelf/internal/utils/validation"
)

// Identity returns the caller resolved by the JWT middleware.
func Identity(c *fiber.Ctx) (auth.Identity, error) {
	id, ok := c.Locals(ctxkeys.IdentityKey).(auth.Identity)
	if !ok || id.IsZero() {
		logger.L().Error("identity not found in context", "path", c.Path())
		return auth.Identity{}, httperr.Fail(httperr.ErrUnauthorized)
	}
	return id, nil
}

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, v *validator.Validate, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := v.Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "error", err)
		return httperr.BadRequest(validation.Describe(err))
	}

	return nil
}

// ParseQuery parses query parameters into req.
func ParseQuery(c *fiber.Ctx, req any, handlerName string) error {
	if err := c.QueryParser(req); err != nil {
		logger.L().Warn("failed to parse query params", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}
	return nil
}

// HandleServiceError maps a notes service error onto an HTTP error.
func HandleServiceError(err error, handlerName, userID, noteID string) error {
	logFields := []any{"handler", handlerName, "user_id", userID, "error", err}
	if noteID != "" {
		logFields = append(logFields, "note_id", noteID)
	}

	switch {
	case errors.Is(err, notes.ErrNoteNotFound):
		logger.L().Info("resource not found", logFields...)
		return httperr.NotFound(notes.ErrNoteNotFound.Error())
	case errors.Is(err, notes.ErrValidation):
		logger.L().Info("rejected note input", logFields...)
		return httperr.BadRequest(err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		return httperr.Fail(httperr.ErrUnauthorized)
	}

	logger.L().Error("service operation failed", logFields...)
	return httperr.Fail(httperr.ErrInternal)
}
