package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/timberline-erp/timberline/internal/accounting/reports"
	"github.com/timberline-erp/timberline/internal/accounting/vouchers"
	"github.com/timberline-erp/timberline/internal/auth"
	"github.com/timberline-erp/timberline/internal/gstin"
	"github.com/timberline-erp/timberline/internal/masterdata/companies"
	"github.com/timberline-erp/timberline/internal/masterdata/ledgers"
	"github.com/timberline-erp/timberline/internal/masterdata/machines"
	"github.com/timberline-erp/timberline/internal/production"
	"github.com/timberline-erp/timberline/internal/sawmill/contractors"
	"github.com/timberline-erp/timberline/internal/sawmill/logs"
	"github.com/timberline-erp/timberline/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthMiddleware auth.Middleware

	AuthHandler        *auth.Handler
	CompanyHandler     *companies.Handler
	LedgerHandler      *ledgers.Handler
	MachineHandler     *machines.Handler
	VoucherHandler     *vouchers.Handler
	ReportHandler      *reports.Handler
	LogHandler         *logs.Handler
	ContractorHandler  *contractors.Handler
	ProductionHandler  *production.Handler
	GSTINHandler       *gstin.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with Timberline defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", params.AuthHandler.MountRoutes)

		api.Group(func(protected chi.Router) {
			protected.Use(params.AuthMiddleware.Authenticate)

			protected.Route("/gstin", params.GSTINHandler.MountRoutes)
			protected.Route("/reports", params.ReportHandler.MountRoutes)

			protected.Group(func(owner chi.Router) {
				owner.Use(params.AuthMiddleware.RequireRole(auth.RoleOwner))
				owner.Route("/auth/admin", params.AuthHandler.MountProtectedRoutes)
				owner.Route("/companies", params.CompanyHandler.MountRoutes)
			})

			protected.Group(func(back chi.Router) {
				back.Use(params.AuthMiddleware.RequireRole(auth.RoleOwner, auth.RoleSupervisor))
				back.Route("/ledgers", params.LedgerHandler.MountRoutes)
				back.Route("/machines", params.MachineHandler.MountRoutes)
				back.Route("/vouchers", params.VoucherHandler.MountRoutes)
				back.Route("/contractors", params.ContractorHandler.MountRoutes)
			})

			protected.Group(func(floor chi.Router) {
				floor.Use(params.AuthMiddleware.RequireRole(auth.RoleOwner, auth.RoleSupervisor, auth.RoleProduction))
				floor.Route("/sawmill/logs", params.LogHandler.MountRoutes)
				floor.Route("/production", params.ProductionHandler.MountRoutes)
			})

			if params.JobHandler != nil {
				protected.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
