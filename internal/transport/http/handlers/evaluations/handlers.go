package evaluationshandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/evaluations"
	"perfeval/internal/platform/requestctx"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Service *evaluations.Service
	Perms   middleware.PermissionStore
	Logger  *slog.Logger
}

func NewHandler(service *evaluations.Service, perms middleware.PermissionStore, logger *slog.Logger) *Handler {
	return &Handler{Service: service, Perms: perms, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/{evaluationID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms)).Put("/{evaluationID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms)).Delete("/{evaluationID}", h.handleDelete)
	})
}

type createRequest struct {
	Title         string                 `json:"title"`
	Type          string                 `json:"type"`
	RevieweeID    string                 `json:"revieweeId"`
	Priority      string                 `json:"priority"`
	DueDate       string                 `json:"dueDate"`
	ScheduledDate string                 `json:"scheduledDate"`
	Comments      string                 `json:"comments"`
	Anonymous     bool                   `json:"anonymous"`
	Questions     []evaluations.Question `json:"questions"`
}

type updateRequest struct {
	Title         *string                 `json:"title"`
	Priority      *string                 `json:"priority"`
	Status        *string                 `json:"status"`
	Progress      *int                    `json:"progress"`
	Score         *float64                `json:"score"`
	DueDate       *string                 `json:"dueDate"`
	ScheduledDate *string                 `json:"scheduledDate"`
	Comments      *string                 `json:"comments"`
	Anonymous     *bool                   `json:"anonymous"`
	Responses     *[]evaluations.Response `json:"responses"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	list, err := h.Service.List(r.Context(), actor)
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
	v.Required("title", payload.Title, "is required")
	v.Required("type", payload.Type, "is required")
	v.Enum("type", payload.Type, evaluations.Types, "must be self-evaluation, peer-review or performance-review")
	v.Date("dueDate", payload.DueDate)
	v.Date("scheduledDate", payload.ScheduledDate)
	for _, q := range payload.Questions {
		v.Enum("questions.type", q.Type, evaluations.QuestionTypes, "must be rating, text or multiple-choice")
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	actor, _ := middleware.GetUser(r.Context())
	if payload.Type == evaluations.TypePerformance {
		allowed, err := h.Perms.HasPermission(r.Context(), actor.Role, auth.PermPerformanceReview)
		if err != nil || !allowed {
			shared.WriteError(w, r, h.Logger, evaluations.ErrReviewerRole)
			return
		}
	}
	evaluation, err := h.Service.Create(r.Context(), actor, evaluations.CreateInput{
		Title:         payload.Title,
		Type:          payload.Type,
		RevieweeID:    payload.RevieweeID,
		Priority:      payload.Priority,
		DueDate:       payload.DueDate,
		ScheduledDate: payload.ScheduledDate,
		Comments:      payload.Comments,
		Anonymous:     payload.Anonymous,
		Questions:     payload.Questions,
	})
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.Created(w, evaluation)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	evaluation, err := h.Service.Get(r.Context(), actor, chi.URLParam(r, "evaluationID"))
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, evaluation)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload updateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	if payload.Status != nil {
		v.Enum("status", *payload.Status, evaluations.Statuses, "must be pending, completed or scheduled")
	}
	v.Range("score", payload.Score, evaluations.MinScore, evaluations.MaxScore, "must be between 0 and 5")
	if payload.Progress != nil && (*payload.Progress < 0 || *payload.Progress > 100) {
		v.Add("progress", "must be between 0 and 100")
	}
	if payload.DueDate != nil {
		v.Date("dueDate", *payload.DueDate)
	}
	if payload.ScheduledDate != nil {
		v.Date("scheduledDate", *payload.ScheduledDate)
	}
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	actor, _ := middleware.GetUser(r.Context())
	evaluation, err := h.Service.Update(r.Context(), actor, chi.URLParam(r, "evaluationID"), evaluations.Patch{
		Title:         payload.Title,
		Priority:      payload.Priority,
		Status:        payload.Status,
		Progress:      payload.Progress,
		Score:         payload.Score,
		DueDate:       payload.DueDate,
		ScheduledDate: payload.ScheduledDate,
		Comments:      payload.Comments,
		Anonymous:     payload.Anonymous,
		Responses:     payload.Responses,
	})
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, evaluation)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	if err := h.Service.Delete(r.Context(), actor, chi.URLParam(r, "evaluationID")); err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, map[string]string{"message": "Evaluation deleted"})
}
