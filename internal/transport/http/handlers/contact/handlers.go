package contacthandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/contact"
	"perfeval/internal/platform/requestctx"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Service *contact.Service
	Logger  *slog.Logger
}

func NewHandler(service *contact.Service, logger *slog.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/contact", h.handleSubmit)
	r.With(middleware.RequireAuth).Get("/contact", h.handleList)
}

type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload submitRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	requestID := requestctx.GetRequestID(r.Context())
	_, err := h.Service.Submit(r.Context(), contact.SubmitInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Message: payload.Message,
	})
	switch {
	case errors.Is(err, contact.ErrMissingFields):
		api.Fail(w, http.StatusBadRequest, "validation_error", "All fields are required.", requestID)
		return
	case err != nil:
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, map[string]string{"message": "Message received and saved!"})
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
