package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/timberline-erp/timberline/internal/platform/httpx"
	"github.com/timberline-erp/timberline/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers public auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

// MountProtectedRoutes registers routes that require an authenticated owner.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Post("/users", h.handleProvision)
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, token, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		h.logger.Error("authenticate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

type provisionForm struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FullName   string `json:"full_name" validate:"required"`
	Role       string `json:"role" validate:"required,oneof=owner supervisor production"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
}

func (h *Handler) handleProvision(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var form provisionForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, err := h.service.Provision(r.Context(), principal, ProvisionInput{
		CompanyID:  principal.CompanyID,
		Email:      form.Email,
		Password:   form.Password,
		FullName:   form.FullName,
		Role:       Role(form.Role),
		Department: form.Department,
		Phone:      form.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrForbidden):
			httpx.RespondError(w, httpx.ErrForbidden)
		case errors.Is(err, ErrDuplicateEmail):
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
		case errors.Is(err, ErrInvalidRole):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("provision user", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}
