package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/absence-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/absence-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/absence-backend-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/absence-backend-go/internal/service/notification"
	"github.com/go-chi/httplog/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "absence-cmlabs"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	approvedLeaveRepo := postgresql.NewApprovedLeaveRepository(db)
	eventRepo := postgresql.NewLeaveEventRepository(db)
	employeeDirectory := postgresql.NewEmployeeDirectory(db)
	transactor := postgresql.NewTransactor(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("jwt service: %w", err)
	}

	balance := leave.NewBalanceCalculator(leaveRequestRepo, approvedLeaveRepo)
	leaveService := leave.NewLeaveService(transactor, leaveRequestRepo, approvedLeaveRepo, eventRepo, employeeDirectory, balance)

	hub := sse.NewHub()
	notificationRepo := postgresql.NewNotificationRepository(db)
	notificationSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{})
	defer notificationSvc.Stop()

	scheduler := cron.NewScheduler()
	cron.NewNotificationJobs(notificationSvc, cfg.App.NotificationRetention).RegisterJobs(scheduler)

	leaveHandler := appHTTP.NewLeaveHandler(leaveService, hub, notificationSvc)
	dashboardHandler := appHTTP.NewDashboardHandler(leaveService)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc, hub, JWTService)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Logger:         logger,
			LogLevel:       level,
		},
		JWTService,
		leaveHandler,
		dashboardHandler,
		notificationHandler,
	)

	// Request contexts end when shutdown starts so open event streams return.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancelBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return scheduler.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down server", "timeout", cfg.App.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
