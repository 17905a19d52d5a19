package gstin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timberline-erp/timberline/internal/platform/httpx"
)

// Handler exposes the GSTIN lookup endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the lookup route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{gstin}", h.lookup)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Lookup(r.Context(), chi.URLParam(r, "gstin"))
	if err != nil {
		if errors.Is(err, ErrInvalidGSTIN) {
			httpx.Problem(w, http.StatusBadRequest, "Invalid GSTIN", err.Error())
			return
		}
		h.logger.Error("gstin lookup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
