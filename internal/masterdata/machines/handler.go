package machines

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/timberline-erp/timberline/internal/platform/httpx"
	"github.com/timberline-erp/timberline/internal/shared"
)

// Handler exposes machine endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches machine routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	items, err := h.service.List(r.Context(), principal.CompanyID)
	if err != nil {
		h.logger.Error("list machines", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var machine Machine
	if err := httpx.DecodeJSON(r, &machine); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	machine.CompanyID = principal.CompanyID
	created, err := h.service.Create(r.Context(), machine)
	if err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var machine Machine
	if err := httpx.DecodeJSON(r, &machine); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	machine.ID = id
	machine.CompanyID = principal.CompanyID
	if err := h.service.Update(r.Context(), machine); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.RespondError(w, httpx.ErrNotFound)
		case errors.Is(err, ErrDuplicateCode):
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
		default:
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}
