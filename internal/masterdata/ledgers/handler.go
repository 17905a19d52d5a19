package ledgers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/timberline-erp/timberline/internal/platform/httpx"
	"github.com/timberline-erp/timberline/internal/shared"
)

// Handler exposes ledger master endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	items, total, err := h.service.List(r.Context(), ListFilters{
		CompanyID: principal.CompanyID,
		Type:      AccountType(q.Get("type")),
		Search:    q.Get("search"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		h.logger.Error("list ledgers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	ledger, err := h.service.Get(r.Context(), principal.CompanyID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var ledger Ledger
	if err := httpx.DecodeJSON(r, &ledger); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	ledger.CompanyID = principal.CompanyID
	created, err := h.service.Create(r.Context(), ledger)
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
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
	var ledger Ledger
	if err := httpx.DecodeJSON(r, &ledger); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	ledger.ID = id
	ledger.CompanyID = principal.CompanyID
	if err := h.service.Update(r.Context(), ledger); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.RespondError(w, httpx.ErrNotFound)
		case errors.Is(err, ErrDuplicateName):
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
		default:
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}
