package httperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"note-shelf/internal/logger"
)

// E is an error with an HTTP status. It renders as {"error": Message}.
type E struct {
	Status  int    `json:"-" example:"400"`
	Message string `json:"error" example:"Bad Request"`
}

// Error implements the error interface
func (e E) Error() string {
	return e.Message
}

// JSON writes e as the response.
func (e E) JSON(c *fiber.Ctx) error {
	return c.Status(e.Status).JSON(e)
}

// Fail returns the error for Fiber's global error handler to process
func Fail(err E) error {
	return err
}

// BadRequest returns a 400 carrying msg.
func BadRequest(msg string) error {
	return Fail(E{Status: fiber.StatusBadRequest, Message: msg})
}

// NotFound returns a 404 carrying msg.
func NotFound(msg string) error {
	return Fail(E{Status: fiber.StatusNotFound, Message: msg})
}

// Pre-defined HTTP errors
var (
	ErrBadRequest       = E{Status: fiber.StatusBadRequest, Message: "Bad Request"}
	ErrUnauthorized     = E{Status: fiber.StatusUnauthorized, Message: "Unauthorized"}
	ErrTooManyRequests  = E{Status: fiber.StatusTooManyRequests, Message: "Too Many Requests"}
	ErrUpgradeRequired  = E{Status: fiber.StatusUpgradeRequired, Message: "WebSocket upgrade required"}
	ErrServiceUnhealthy = E{Status: fiber.StatusServiceUnavailable, Message: "Service Unavailable"}
	ErrInternal         = E{Status: fiber.StatusInternalServerError, Message: "Internal Server Error"}
)

// Handler is the global error handler for Fiber. Errors that are neither E
// nor *fiber.Error are rendered as a bare 500 so store messages never leak.
func Handler(c *fiber.Ctx, err error) error {
	var e E
	if errors.As(err, &e) {
		return e.JSON(c)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			logger.L().Error("request failed", "path", c.Path(), "status", fe.Code, "error", fe.Message)
			return E{Status: fe.Code, Message: ErrInternal.Message}.JSON(c)
		}
		return E{Status: fe.Code, Message: fe.Message}.JSON(c)
	}

	logger.L().Error("unhandled error", "path", c.Path(), "method", c.Method(), "error", err)
	return ErrInternal.JSON(c)
}
