package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/config"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	appHTTP "github.com/paygrid-hq/paygrid-backend-go/internal/handler/http"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/cron"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/database"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/jwt"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/provider/sandbox"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/provider/staffology"
	"github.com/paygrid-hq/paygrid-backend-go/internal/repository/postgresql"
	healthService "github.com/paygrid-hq/paygrid-backend-go/internal/service/health"
	integrationService "github.com/paygrid-hq/paygrid-backend-go/internal/service/integration"
	notificationService "github.com/paygrid-hq/paygrid-backend-go/internal/service/notification"
	payrollService "github.com/paygrid-hq/paygrid-backend-go/internal/service/payroll"
	taxService "github.com/paygrid-hq/paygrid-backend-go/internal/service/tax"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	runRepo := postgresql.NewPayrollRunRepository(db)
	attemptRepo := postgresql.NewAttemptRepository(db)
	settingsRepo := postgresql.NewProviderSettingsRepository(db)
	webhookEventRepo := postgresql.NewWebhookEventRepository(db)
	snapshotRepo := postgresql.NewHealthSnapshotRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	taxStore := taxService.NewConfigStore()
	taxEngine := taxService.NewEngine(taxStore)

	registry := integration.NewRegistry()
	registry.Register("staffology", staffology.New)
	registry.Register("sandbox", sandbox.New)

	notifier := notificationService.NewNotificationService(notificationRepo, notificationService.Config{})

	orchestrator := integrationService.NewOrchestrator(
		attemptRepo, runRepo, settingsRepo, registry, notifier, cfg.Integration.MaxRetryCount,
	)
	webhookProcessor := integrationService.NewWebhookProcessor(
		settingsRepo, attemptRepo, runRepo, webhookEventRepo, notifier,
	)
	healthSvc := healthService.NewHealthService(
		attemptRepo, settingsRepo, webhookEventRepo, snapshotRepo, registry, notifier, cfg.Integration.MaxRetryCount,
	)
	payrollSvc := payrollService.NewPayrollService(runRepo, taxEngine)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	integrationHandler := appHTTP.NewIntegrationHandler(orchestrator, webhookProcessor)
	healthHandler := appHTTP.NewHealthHandler(healthSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notifier)
	taxHandler := appHTTP.NewTaxHandler(taxStore)

	router := appHTTP.NewRouter(
		JWTService,
		payrollHandler,
		integrationHandler,
		healthHandler,
		notificationHandler,
		taxHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewIntegrationJobs(orchestrator, healthSvc, cfg.Integration).RegisterJobs(scheduler)
	scheduler.Start()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error:", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Println("Server shutdown error:", err)
	}
	scheduler.Stop()
	notifier.Stop()
}
