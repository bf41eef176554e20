package ws

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"perfeval/internal/domain/identity"
	"perfeval/internal/platform/requestctx"
)

// RoomAuthorizer decides whether a caller may join or post to a room.
// chat.Service implements it with channel membership.
type RoomAuthorizer interface {
	CanUseRoom(ctx context.Context, actor identity.Identity, room string) (bool, error)
}

// Handler upgrades authenticated requests into relay connections.
type Handler struct {
	Hub      *Hub
	Logger   *slog.Logger
	Rooms    RoomAuthorizer
	upgrader websocket.Upgrader
	// base outlives the request so connections survive the handler returning.
	base context.Context
}

// NewHandler accepts browser origins listed in allowedOrigins; "*" allows any.
// A nil rooms authorizer leaves every room open.
func NewHandler(ctx context.Context, hub *Hub, rooms RoomAuthorizer, logger *slog.Logger, allowedOrigins []string) *Handler {
	h := &Handler{Hub: hub, Logger: logger, Rooms: rooms, base: ctx}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := requestctx.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Debug("chat relay: upgrade failed", "err", err)
		return
	}
	h.Hub.metrics.SocketOpened()
	client := newClient(h.Hub, conn, id, h.Rooms)
	h.Logger.Debug("chat relay: connected", "user_id", id.UserID)
	go func() {
		defer h.Hub.metrics.SocketClosed()
		client.run(h.base)
	}()
}
