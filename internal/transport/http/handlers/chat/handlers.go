package chathandler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/chat"
	"perfeval/internal/platform/requestctx"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Service *chat.Service
	Perms   middleware.PermissionStore
	// Relay serves the WebSocket upgrade at /chat/ws when set.
	Relay  http.Handler
	Logger *slog.Logger
}

func NewHandler(service *chat.Service, perms middleware.PermissionStore, relay http.Handler, logger *slog.Logger) *Handler {
	return &Handler{Service: service, Perms: perms, Relay: relay, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		if h.Relay != nil {
			r.Handle("/ws", h.Relay)
		}
		read := middleware.RequirePermission(auth.PermChatRead, h.Perms)
		write := middleware.RequirePermission(auth.PermChatWrite, h.Perms)
		r.With(read).Get("/channels", h.handleListChannels)
		r.With(write).Post("/channels", h.handleCreateChannel)
		r.With(write).Post("/channels/{roomID}/join", h.handleJoin)
		r.With(write).Delete("/channels/{roomID}", h.handleDeleteChannel)
		r.With(read).Get("/{roomID}/history", h.handleHistory)
		r.With(write).Post("/{roomID}/messages", h.handlePostMessage)
	})
}

type createChannelRequest struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Members []string `json:"members"`
}

type postMessageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) handleListChannels(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	views, err := h.Service.ListChannels(r.Context(), actor)
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, views)
}

func (h *Handler) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var payload createChannelRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Enum("type", payload.Type, []string{chat.ChannelPublic, chat.ChannelPrivate}, "must be public or private")
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	actor, _ := middleware.GetUser(r.Context())
	channel, err := h.Service.CreateChannel(r.Context(), actor, chat.CreateChannelInput{
		Name:    payload.Name,
		Type:    strings.ToLower(strings.TrimSpace(payload.Type)),
		Members: payload.Members,
	})
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.Created(w, channel)
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	channel, err := h.Service.JoinChannel(r.Context(), actor, chi.URLParam(r, "roomID"))
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, channel)
}

func (h *Handler) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	roomID := chi.URLParam(r, "roomID")
	if err := h.Service.DeleteChannel(r.Context(), actor, roomID); err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	h.Logger.Info("chat channel deleted", "room", roomID, "actor_id", actor.UserID)
	api.OK(w, map[string]string{"message": "Channel deleted"})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	before, err := shared.ParseDate(r.URL.Query().Get("before"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", "before must be an RFC3339 timestamp", requestctx.GetRequestID(r.Context()))
		return
	}
	limit := shared.ParseLimit(r, chat.DefaultHistoryLimit, chat.MaxHistoryLimit)

	actor, _ := middleware.GetUser(r.Context())
	messages, err := h.Service.History(r.Context(), actor, chi.URLParam(r, "roomID"), before, limit)
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, messages)
}

func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var payload postMessageRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	actor, _ := middleware.GetUser(r.Context())
	msg, err := h.Service.PostMessage(r.Context(), actor, chi.URLParam(r, "roomID"), payload.Message)
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.Created(w, msg)
}
