package authhandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

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
	Service      *auth.Service
	Users        *users.Service
	SecureCookie bool
	Logger       *slog.Logger
}

func NewHandler(service *auth.Service, userSvc *users.Service, secureCookie bool, logger *slog.Logger) *Handler {
	return &Handler{Service: service, Users: userSvc, SecureCookie: secureCookie, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Post("/check-email", h.handleCheckEmail)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/mfa/setup", h.handleSetupMFA)
			r.Post("/mfa/enable", h.handleEnableMFA)
			r.Post("/mfa/disable", h.handleDisableMFA)
		})
	})
}

type signupRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var payload signupRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Email("email", payload.Email)
	v.Required("password", payload.Password, "is required")
	v.MinLength("password", payload.Password, auth.MinPasswordLength, "must be at least 6 characters")
	v.Required("name", payload.Name, "is required")
	v.Required("department", payload.Department, "is required")
	v.Required("role", payload.Role, "is required")
	v.Enum("role", payload.Role, identity.SignupRoles, "must be employee or manager")
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	user, err := h.Service.Signup(r.Context(), auth.SignupInput{
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
	h.Logger.Info("user signed up", "user_id", user.ID, "role", user.Role)
	api.Created(w, map[string]any{"user": user})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}

	session, err := h.Service.Login(r.Context(), auth.LoginInput{
		Email:    payload.Email,
		Password: payload.Password,
		MFACode:  payload.MFACode,
	})
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	http.SetCookie(w, h.sessionCookie(session.Token, session.ExpiresAt))
	api.OK(w, map[string]any{"user": session.User})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok {
		if err := h.Service.Logout(r.Context(), user); err != nil {
			h.Logger.Warn("logout revoke failed", "user_id", user.UserID, "err", err)
		}
	}
	http.SetCookie(w, h.clearedCookie())
	api.OK(w, map[string]string{"message": "Logged out"})
}

func (h *Handler) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	var payload emailRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.Email) == "" {
		api.Fail(w, http.StatusBadRequest, "validation_error", "Email required", requestctx.GetRequestID(r.Context()))
		return
	}
	exists, err := h.Users.EmailExists(r.Context(), payload.Email)
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, map[string]bool{"exists": exists})
}

func (h *Handler) handleSetupMFA(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	setup, err := h.Service.SetupMFA(r.Context(), user)
	if err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, setup)
}

func (h *Handler) handleEnableMFA(w http.ResponseWriter, r *http.Request) {
	h.handleMFACode(w, r, h.Service.EnableMFA, true)
}

func (h *Handler) handleDisableMFA(w http.ResponseWriter, r *http.Request) {
	h.handleMFACode(w, r, h.Service.DisableMFA, false)
}

func (h *Handler) handleMFACode(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, actor identity.Identity, code string) error, enabled bool) {
	var payload mfaCodeRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("code", payload.Code, "is required")
	if v.Reject(w, requestctx.GetRequestID(r.Context())) {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := apply(r.Context(), user, payload.Code); err != nil {
		shared.WriteError(w, r, h.Logger, err)
		return
	}
	api.OK(w, map[string]bool{"mfaEnabled": enabled})
}

func (h *Handler) sessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(h.Service.TTL / time.Second),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
