package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/timberline-erp/timberline/internal/accounting/reports"
	"github.com/timberline-erp/timberline/internal/accounting/vouchers"
	"github.com/timberline-erp/timberline/internal/app"
	"github.com/timberline-erp/timberline/internal/auth"
	"github.com/timberline-erp/timberline/internal/gstin"
	"github.com/timberline-erp/timberline/internal/masterdata/companies"
	"github.com/timberline-erp/timberline/internal/masterdata/ledgers"
	"github.com/timberline-erp/timberline/internal/masterdata/machines"
	"github.com/timberline-erp/timberline/internal/platform/cache"
	"github.com/timberline-erp/timberline/internal/platform/db"
	"github.com/timberline-erp/timberline/internal/production"
	"github.com/timberline-erp/timberline/internal/sawmill/contractors"
	"github.com/timberline-erp/timberline/internal/sawmill/logs"
	"github.com/timberline-erp/timberline/internal/shared"
	"github.com/timberline-erp/timberline/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	queueClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)

	tokens := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authService := auth.NewService(auth.NewRepository(dbpool), tokens, auditLogger)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Tokens: tokens, Logger: logger}

	companyHandler := companies.NewHandler(logger, companies.NewService(companies.NewRepository(dbpool)))
	ledgerHandler := ledgers.NewHandler(logger, ledgers.NewService(ledgers.NewRepository(dbpool)))
	machineHandler := machines.NewHandler(logger, machines.NewService(machines.NewRepository(dbpool)))

	voucherService := vouchers.NewService(vouchers.NewRepository(dbpool), auditLogger, queueClient)
	voucherHandler := vouchers.NewHandler(logger, voucherService)

	reportHandler := reports.NewHandler(logger, reports.NewService(reports.NewRepository(dbpool)))

	logService := logs.NewService(logs.NewRepository(dbpool), logger, auditLogger)
	logHandler := logs.NewHandler(logger, logService)
	contractorHandler := contractors.NewHandler(logger, contractors.NewService(contractors.NewRepository(dbpool)))

	productionService := production.NewService(production.NewRepository(dbpool), queueClient, logService)
	productionHandler := production.NewHandler(logger, productionService)

	gstinAPI := gstin.NewAPIClient(cfg.GSTINAPIBaseURL, cfg.GSTINAPIKey)
	gstinService := gstin.NewService(logger, gstin.NewRepository(dbpool), gstinAPI, redisClient, cfg.GSTINCacheTTL)
	gstinHandler := gstin.NewHandler(logger, gstinService)

	jobHandler := jobs.NewHandler(asynq.NewInspector(redisOpts), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthMiddleware:    authMiddleware,
		AuthHandler:       authHandler,
		CompanyHandler:    companyHandler,
		LedgerHandler:     ledgerHandler,
		MachineHandler:    machineHandler,
		VoucherHandler:    voucherHandler,
		ReportHandler:     reportHandler,
		LogHandler:        logHandler,
		ContractorHandler: contractorHandler,
		ProductionHandler: productionHandler,
		GSTINHandler:      gstinHandler,
		JobHandler:        jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
