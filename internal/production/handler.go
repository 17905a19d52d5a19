package production

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/timberline-erp/timberline/internal/platform/httpx"
	sawlogs "github.com/timberline-erp/timberline/internal/sawmill/logs"
	"github.com/timberline-erp/timberline/internal/shared"
)

// Handler exposes production tracking endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches order and entry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/machine", h.assignMachine)
	r.Get("/orders/{id}/production", h.listProduction)
	r.Post("/orders/{id}/production", h.recordProduction)
	r.Get("/orders/{id}/dispatch", h.listDispatch)
	r.Post("/orders/{id}/dispatch", h.recordDispatch)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	items, err := h.service.ListOrders(r.Context(), principal.CompanyID)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var in OrderInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	created, err := h.service.CreateOrder(r.Context(), principal.CompanyID, principal.UserID, in)
	if err != nil {
		if errors.Is(err, ErrDuplicateOrderNumber) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	view, err := h.service.GetOrder(r.Context(), principal.CompanyID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) assignMachine(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	orderID, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var body struct {
		MachineID int64 `json:"machine_id"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.AssignMachine(r.Context(), principal.CompanyID, orderID, body.MachineID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assigned": true})
}

func (h *Handler) listProduction(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	orderID, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	items, err := h.service.ListProduction(r.Context(), principal.CompanyID, orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) recordProduction(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	orderID, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var in ProductionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	entry, err := h.service.RecordProduction(r.Context(), principal.CompanyID, principal.UserID, orderID, in)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.RespondError(w, httpx.ErrNotFound)
		case errors.Is(err, sawlogs.ErrInvalidTransition):
			httpx.Problem(w, http.StatusConflict, "Log Unavailable", err.Error())
		default:
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) listDispatch(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	orderID, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	items, err := h.service.ListDispatch(r.Context(), principal.CompanyID, orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) recordDispatch(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	orderID, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var in DispatchInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	entry, err := h.service.RecordDispatch(r.Context(), principal.CompanyID, principal.UserID, orderID, in)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.RespondError(w, httpx.ErrNotFound)
		case errors.Is(err, ErrOverDispatch):
			httpx.Problem(w, http.StatusConflict, "Over Dispatch", err.Error())
		default:
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}
