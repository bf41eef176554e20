package usershandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/identity"
	"perfeval/internal/domain/users"
	"perfeval/internal/platform/requestctx"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Service *users.Service
	Auth    *auth.Service
	Perms   middleware.PermissionStore
	Logger  *slog.Logger
}

func NewHandler(service *users.Service, authSvc *auth.Service, perms middleware.PermissionStore, logger *slog.Logger) *Handler {
	return &Handler{Service: service, Auth: authSvc, Perms: perms, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", h.handleMe)
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Post("/", h.handleCreate)
		r.Put("/{userID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Delete("/{userID}", h.handleDelete)
	})
}

type createRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

type updateRequest struct {
	Email      *string `json:"email"`
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Avatar     *string `json:"avatar"`
	Role       *string `json:"role"`
}

// handleMe echoes the identity carried by the session token.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.OK(w, map[string]identity.Identity{"user": user})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Email("email", payload.Email)
	v.Required("password", payload.Password, "is required")
	v.MinLength("password", payload.Password, auth.MinPasswordLength, "must be at least 6 characters")
	v.Required("name", payload.Name, "is required")
	v.Required("role", payload.Role, "is required")
	v.Enum("role", payload.Role, identity.AllRoles, "must be employee, manager or hr")
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	user, err := h.Auth.Provision(r.Context(), auth.SignupInput{
		Email:      payload.Email,
		Password:   payload.Password,
		Name:       payload.Name,
		Department: payload.Department,
		Role:       payload.Role,
	})
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	actor, _ := middleware.GetUser(r.Context())
	h.Logger.Info("user provisioned", "user_id", user.ID, "role", user.Role, "actor_id", actor.UserID)
	api.Created(w, user)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload updateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	if payload.Email != nil {
		v.Required("email", *payload.Email, "must not be empty")
		v.Email("email", *payload.Email)
	}
	if payload.Name != nil {
		v.Required("name", *payload.Name, "must not be empty")
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	actor, _ := middleware.GetUser(r.Context())
	user, err := h.Service.UpdateProfile(r.Context(), actor, chi.URLParam(r, "userID"), users.Patch{
		Email:      payload.Email,
		Name:       payload.Name,
		Department: payload.Department,
		Avatar:     payload.Avatar,
		Role:       payload.Role,
	})
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, user)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	if err := h.Service.Delete(r.Context(), actor, chi.URLParam(r, "userID")); err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, map[string]string{"message": "User deleted"})
}
