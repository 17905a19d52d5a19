package vouchers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/timberline-erp/timberline/internal/accounting/shared"
	"github.com/timberline-erp/timberline/internal/platform/httpx"
	internalShared "github.com/timberline-erp/timberline/internal/shared"
)

// Handler exposes voucher endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := internalShared.PrincipalFromContext(r.Context())
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
	filters := ListFilters{
		CompanyID: principal.CompanyID,
		Type:      VoucherType(q.Get("type")),
		Page:      page,
		Limit:     limit,
	}
	if from, err := time.Parse("2006-01-02", q.Get("from")); err == nil {
		filters.From = from
	}
	if to, err := time.Parse("2006-01-02", q.Get("to")); err == nil {
		filters.To = to
	}
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list vouchers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": internalShared.NewPagination(page, limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal := internalShared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	voucher, err := h.service.Get(r.Context(), principal.CompanyID, id)
	if err != nil {
		if errors.Is(err, shared.ErrVoucherNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get voucher", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, voucher)
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	principal := internalShared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var input PostingInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	input.CompanyID = principal.CompanyID
	input.PostedBy = principal.UserID
	voucher, err := h.service.Post(r.Context(), input)
	if err != nil {
		h.respondPostError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, voucher)
}

func (h *Handler) respondPostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnbalanced),
		errors.Is(err, shared.ErrTooFewEntries),
		errors.Is(err, shared.ErrInvalidVoucherType):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrCompanyMismatch):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrLedgerNotFound):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrDuplicateNumber):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("post voucher", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal := internalShared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.Delete(r.Context(), principal.CompanyID, id, principal.UserID); err != nil {
		if errors.Is(err, shared.ErrVoucherNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete voucher", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}
