package middlewares

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"note-shelf/cmd/server/ctxkeys"
	"note-shelf/cmd/server/handlers/httperr"
	"note-shelf/internal/logger"
	"note-shelf/internal/services/auth"
)

// JWT returns a configured Fiber middleware that:
//
//   - validates the HS256 Bearer token signature with secret
//   - makes sure the token carries a "user_id" claim
//   - stores the resulting auth.Identity in ctx.Locals(ctxkeys.IdentityKey)
//
// Any failure is answered with 401 through the global httperr handler.
func JWT(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: secret},
		ContextKey: ctxkeys.TokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(ctxkeys.TokenKey).(*jwt.Token)
			if !ok {
				return httperr.Fail(httperr.ErrUnauthorized)
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			id, err := auth.IdentityFromClaims(claims)
			if err != nil {
				logger.L().Warn("token without identity", "path", c.Path())
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			c.Locals(ctxkeys.IdentityKey, id)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.L().Debug("bearer token rejected", "path", c.Path(), "error", err)
			return httperr.Fail(httperr.ErrUnauthorized)
		},
	})
}
