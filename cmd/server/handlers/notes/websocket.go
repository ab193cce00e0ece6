package notes

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"

	"note-shelf/cmd/server/ctxkeys"
	"note-shelf/cmd/server/handlers/httperr"
	"note-shelf/internal/logger"
	"note-shelf/internal/services/auth"
	"note-shelf/internal/services/notes"
)

const (
	// WSClosePolicyViolation is sent when the session lifetime is exceeded.
	WSClosePolicyViolation = 1008

	wsWriteTimeout     = 10 * time.Second
	wsPingInterval     = 25 * time.Second
	wsPingWriteTimeout = 5 * time.Second
	wsMaxIncomingBytes = 4 << 10
)

// Hub is the subscription side of the live note feed.
type Hub interface {
	Subscribe(connID ulid.ULID, ownerID string) (*notes.Subscriber, func())
}

// TokenResolver turns an access token into an identity.
type TokenResolver interface {
	ResolveToken(raw string) (auth.Identity, error)
}

// WebSocketHandlers serves the live note feed.
type WebSocketHandlers struct {
	hub        Hub
	tokens     TokenResolver
	maxSession time.Duration
}

// NewWebSocketHandlers creates new WebSocket handlers
func NewWebSocketHandlers(hub Hub, tokens TokenResolver, maxSessionSec int) *WebSocketHandlers {
	return &WebSocketHandlers{
		hub:        hub,
		tokens:     tokens,
		maxSession: time.Duration(maxSessionSec) * time.Second,
	}
}

// WSUpgrade authenticates the ?token= query parameter before the upgrade.
// Browsers cannot set headers on a WebSocket handshake.
// @Summary Live note feed
// @Description Upgrades to a WebSocket delivering created, updated and deleted events for the caller's notes.
// @Tags notes
// @Param token query string true "Access token"
// @Success 101
// @Failure 401 {object} httperr.E
// @Failure 426 {object} httperr.E
// @Router /ws/notes/stream [get]
func (h *WebSocketHandlers) WSUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		logger.L().Warn("websocket upgrade required", "handler", "WSUpgrade", "path", c.Path())
		return httperr.Fail(httperr.ErrUpgradeRequired)
	}

	id, err := h.tokens.ResolveToken(c.Query("token"))
	if err != nil {
		logger.L().Warn("rejected websocket token", "handler", "WSUpgrade", "ip", c.IP())
		return httperr.Fail(httperr.ErrUnauthorized)
	}

	c.Locals(ctxkeys.IdentityKey, id)
	c.Locals(ctxkeys.ParentCtxKey, c.UserContext())
	return c.Next()
}

// WSNotesStream pumps the caller's note events until the client leaves, a
// write fails or the session lifetime runs out.
func (h *WebSocketHandlers) WSNotesStream(c *websocket.Conn) {
	id, ok := c.Locals(ctxkeys.IdentityKey).(auth.Identity)
	if !ok || id.IsZero() {
		logger.L().Error("identity not found in websocket context")
		_ = c.Close()
		return
	}
	parent, ok := c.Locals(ctxkeys.ParentCtxKey).(context.Context)
	if !ok {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	connID := ulid.Make()
	log := logger.L().With("user_id", id.UserID, "conn_id", connID.String())

	sub, unsubscribe := h.hub.Subscribe(connID, id.UserID)
	defer unsubscribe()

	log.Info("websocket connection established")

	session := time.AfterFunc(h.maxSession, func() {
		log.Info("websocket session timeout")
		msg := websocket.FormatCloseMessage(WSClosePolicyViolation, "session timeout")
		if err := c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout)); err != nil {
			log.Warn("failed to send close message", "error", err)
		}
		_ = c.Close()
		cancel()
	})
	defer session.Stop()

	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		h.pump(ctx, c, sub, log)
	}()

	c.SetReadLimit(wsMaxIncomingBytes)
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn("websocket read failed", "error", err)
			}
			break
		}
	}

	// c is recycled once this handler returns
	session.Stop()
	cancel()
	<-pumped
	log.Info("websocket connection closed")
}

// pump is the only data writer on c. WriteControl may run concurrently.
func (h *WebSocketHandlers) pump(ctx context.Context, c *websocket.Conn, sub *notes.Subscriber, log *slog.Logger) {
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-sub.Ch:
			if !ok {
				return
			}
			if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
			if err := c.WriteJSON(eventMessage(ev)); err != nil {
				log.Debug("failed to write websocket message", "error", err)
				return
			}
		case <-ping.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsPingWriteTimeout)); err != nil {
				return
			}
		case <-sub.Done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// wsEvent is the frame sent to feed clients.
type wsEvent struct {
	Type string `json:"type"`
	Note any    `json:"note"`
}

// eventMessage trims deleted notes down to their id.
func eventMessage(ev notes.NoteEvent) wsEvent {
	if ev.Type == notes.EventDeleted {
		return wsEvent{Type: ev.Type, Note: map[string]string{"id": ev.Note.ID}}
	}
	return wsEvent{Type: ev.Type, Note: ev.Note}
}
