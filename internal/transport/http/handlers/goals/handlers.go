package goalshandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/goals"
	"perfeval/internal/platform/requestctx"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Service *goals.Service
	Perms   middleware.PermissionStore
	Logger  *slog.Logger
}

func NewHandler(service *goals.Service, perms middleware.PermissionStore, logger *slog.Logger) *Handler {
	return &Handler{Service: service, Perms: perms, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/goals", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequirePermission(auth.PermGoalsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermGoalsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermGoalsRead, h.Perms)).Get("/{goalID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermGoalsWrite, h.Perms)).Put("/{goalID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermGoalsWrite, h.Perms)).Delete("/{goalID}", h.handleDelete)
	})
}

type goalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Progress    *int    `json:"progress"`
	Status      *string `json:"status"`
	DueDate     *string `json:"dueDate"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (p goalRequest) validate(v *shared.Validator, creating bool) {
	if creating || p.Title != nil {
		v.Required("title", deref(p.Title), "is required")
	}
	v.Enum("priority", deref(p.Priority), goals.Priorities, "must be high, medium or low")
	v.Enum("status", deref(p.Status), goals.Statuses, "must be active, completed, overdue, on-track or behind")
	if p.Progress != nil && (*p.Progress < 0 || *p.Progress > 100) {
		v.Add("progress", "must be between 0 and 100")
	}
	v.Date("dueDate", deref(p.DueDate))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	ownerID := r.URL.Query().Get("userId")
	if ownerID != "" && ownerID != actor.UserID {
		allowed, err := h.Perms.HasPermission(r.Context(), actor.Role, auth.PermGoalsReadOthers)
		if err != nil || !allowed {
			shared.WriteError(w, r, h.Logger, goals.ErrForbidden)
			return
		}
	}
	list, err := h.Service.List(r.Context(), actor, ownerID)
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload goalRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	payload.validate(v, true)
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	actor, _ := middleware.GetUser(r.Context())
	goal, err := h.Service.Create(r.Context(), actor, goals.CreateInput{
		Title:       deref(payload.Title),
		Description: deref(payload.Description),
		Category:    deref(payload.Category),
		Priority:    deref(payload.Priority),
		Progress:    deref(payload.Progress),
		Status:      deref(payload.Status),
		DueDate:     deref(payload.DueDate),
	})
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.Created(w, goal)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	goal, err := h.Service.Get(r.Context(), actor, chi.URLParam(r, "goalID"))
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, goal)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload goalRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	payload.validate(v, false)
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	actor, _ := middleware.GetUser(r.Context())
	goal, err := h.Service.Update(r.Context(), actor, chi.URLParam(r, "goalID"), goals.Patch{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Priority:    payload.Priority,
		Progress:    payload.Progress,
		Status:      payload.Status,
		DueDate:     payload.DueDate,
	})
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, goal)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	if err := h.Service.Delete(r.Context(), actor, chi.URLParam(r, "goalID")); err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, map[string]string{"message": "Goal deleted"})
}
