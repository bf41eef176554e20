package analyticshandler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/analytics"
	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/goals"
	"perfeval/internal/domain/users"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Service *analytics.Service
	Users   *users.Service
	Perms   middleware.PermissionStore
	Logger  *slog.Logger
}

func NewHandler(service *analytics.Service, userSvc *users.Service, perms middleware.PermissionStore, logger *slog.Logger) *Handler {
	return &Handler{Service: service, Users: userSvc, Perms: perms, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequirePermission(auth.PermAnalyticsRead, h.Perms))
		r.Get("/summary", h.handleSummary)
		r.Get("/summary.pdf", h.handleSummaryPDF)
	})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) (analytics.Summary, bool) {
	actor, _ := middleware.GetUser(r.Context())
	userID := r.URL.Query().Get("userId")
	if userID != "" && userID != actor.UserID {
		allowed, err := h.Perms.HasPermission(r.Context(), actor.Role, auth.PermAnalyticsTeam)
		if err != nil || !allowed {
			shared.WriteError(w, r, h.Logger, goals.ErrForbidden)
			return analytics.Summary{}, false
		}
	}
	summary, err := h.Service.Summary(r.Context(), actor, userID)
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return analytics.Summary{}, false
	}
	return summary, true
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.summary(w, r)
	if !ok {
		return
	}
	api.OK(w, summary)
}

func (h *Handler) handleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.summary(w, r)
	if !ok {
		return
	}
	name := summary.UserID
	if h.Users != nil {
		user, err := h.Users.Get(r.Context(), summary.UserID)
		switch {
		case err == nil:
			name = user.Name
		case !errors.Is(err, users.ErrNotFound):
			h.Logger.Warn("analytics: user lookup failed", "user_id", summary.UserID, "err", err)
		}
	}

	var buf bytes.Buffer
	if err := analytics.WritePDF(&buf, summary, name); err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="performance-summary.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
