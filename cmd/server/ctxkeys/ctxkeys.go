// Package ctxkeys names the fiber.Ctx locals shared between middlewares and
// handlers.
package ctxkeys

const (
	// IdentityKey holds the auth.Identity resolved from the bearer token.
	IdentityKey = "identity"
	// ParentCtxKey carries the request context into the websocket handler.
	ParentCtxKey = "parentCtx"
	// TokenKey is where contrib/jwt stores the parsed *jwt.Token.
	TokenKey = "user"
)
