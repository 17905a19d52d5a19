package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	acctshared "github.com/timberline-erp/timberline/internal/accounting/shared"
	"github.com/timberline-erp/timberline/internal/platform/httpx"
	"github.com/timberline-erp/timberline/internal/shared"
)

// Handler exposes the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func parseRange(r *http.Request) (time.Time, time.Time) {
	q := r.URL.Query()
	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		from = time.Date(time.Now().Year(), time.April, 1, 0, 0, 0, 0, time.UTC)
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		to = time.Now().Truncate(24 * time.Hour)
	}
	return from, to
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	ledgerID, _ := strconv.ParseInt(chi.URLParam(r, "ledgerID"), 10, 64)
	from, to := parseRange(r)
	statement, err := h.service.Statement(r.Context(), principal.CompanyID, ledgerID, from, to)
	if err != nil {
		if errors.Is(err, acctshared.ErrLedgerNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("ledger statement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	from, to := parseRange(r)
	tb, err := h.service.TrialBalance(r.Context(), principal.CompanyID, from, to)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) profitAndLoss(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	from, to := parseRange(r)
	pl, err := h.service.ProfitAndLoss(r.Context(), principal.CompanyID, from, to)
	if err != nil {
		h.logger.Error("profit and loss", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"report": pl,
		"layout": LayoutProfitAndLoss(pl),
	})
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	from, asOf := parseRange(r)
	bs, err := h.service.BalanceSheet(r.Context(), principal.CompanyID, from, asOf)
	if err != nil {
		h.logger.Error("balance sheet", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}
