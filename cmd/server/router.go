package main

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	_ "note-shelf/docs" // Load swagger docs

	"note-shelf/cmd/server/handlers"
	authHandlers "note-shelf/cmd/server/handlers/auth"
	"note-shelf/cmd/server/handlers/httperr"
	notesHandlers "note-shelf/cmd/server/handlers/notes"
	"note-shelf/cmd/server/middlewares"
	"note-shelf/internal/config"
	"note-shelf/internal/logger"
	"note-shelf/internal/services/access"
	"note-shelf/internal/services/auth"
	"note-shelf/internal/services/notes"
	"note-shelf/internal/utils/validation"
)

const RateLimitExpiration = 1 * time.Minute

// stores is everything the router needs from the persistence layer.
type stores struct {
	users   auth.UsersRepo
	tokens  auth.RefreshTokensRepo
	notes   notes.Repository
	cache   notes.CountsCache
	pingers map[string]handlers.Pinger
}

func newValidator() (*validator.Validate, error) {
	v, err := validation.New()
	if err != nil {
		return nil, err
	}
	if err := notes.RegisterCategoryValidator(v); err != nil {
		return nil, fmt.Errorf("register category rule: %w", err)
	}
	return v, nil
}

// setupRouter wires services over st and returns the Fiber app with every
// route mounted.
func setupRouter(cfg config.Config, st stores) (*fiber.App, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}

	log := logger.L()

	authSvc := auth.NewService(st.users, st.tokens, v, cfg, log)
	hub := notes.NewHub(cfg.WSOutboxBuffer)
	notesSvc := notes.NewService(st.notes, hub, st.cache, log)
	mediator := access.New(notesSvc)

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app, hub)
	}

	// outside the versioned API so probes are neither logged nor limited
	app.Get("/healthz", handlers.Healthz(st.pingers))
	app.Get("/docs/*", swagger.HandlerDefault)

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		log.Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		log.Info("request logging disabled")
	}

	jwtMW := middlewares.JWT(authSvc.Issuer().Secret())

	authH := authHandlers.NewHandlers(authSvc)
	authGrp := v1.Group("/auth", middlewares.BuildRateLimiter(cfg.SignInRatePerMin, RateLimitExpiration))
	authGrp.Post("/register", authH.Register)
	authGrp.Post("/login", authH.Login)
	authGrp.Post("/refresh", authH.Refresh)
	authGrp.Post("/sign-out", jwtMW, authH.SignOut)

	v1.Get("/me", jwtMW, handlers.Me)

	notesH := notesHandlers.NewHandlers(mediator, v)
	notesGrp := v1.Group("/notes", jwtMW)
	notesGrp.Get("/", notesH.List)
	notesGrp.Post("/", notesH.Create)
	notesGrp.Get("/categories", notesH.Categories)
	notesGrp.Get("/:id", notesH.Get)
	notesGrp.Put("/:id", notesH.Replace)
	notesGrp.Patch("/:id", notesH.Patch)
	notesGrp.Delete("/:id", notesH.Delete)

	wsH := notesHandlers.NewWebSocketHandlers(hub, authSvc, cfg.WSMaxSessionSec)
	app.Get("/ws/notes/stream", wsH.WSUpgrade, websocket.New(wsH.WSNotesStream))

	return app, nil
}
