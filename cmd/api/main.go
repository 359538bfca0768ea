package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/attendance"
	balanceService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/balance"
	employeeService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/service/file"
	importService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/importer"
	leaveService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/leave"
	reportService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/report"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.SlogLevel(), "timesheet-backend", cfg.App.Env)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL(), database.PoolSize{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	tx := postgresql.NewTxManager(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)

	jwtService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("error creating jwt service: %w", err)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize local storage: %w", err)
	}
	fileService := file.NewFileService(fileStorage)

	ledger := balanceService.NewLedger(tx, attendanceRepo, leaveRequestRepo, employeeRepo)
	attendanceSvc := attendanceService.NewAttendanceService(tx, cfg.Policy, attendanceRepo, employeeRepo, ledger)
	leaveSvc := leaveService.NewLeaveService(tx, leaveRequestRepo, employeeRepo, ledger)
	importSvc := importService.NewImportService(tx, employeeRepo, attendanceSvc, ledger, fileService)
	reportSvc := reportService.NewReportService(attendanceRepo, leaveRequestRepo)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, jwtService)

	router := appHTTP.NewRouter(jwtService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(employeeSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Balance:    appHTTP.NewBalanceHandler(ledger),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Import:     appHTTP.NewImportHandler(importSvc),
		Report:     appHTTP.NewReportHandler(reportSvc),
	}, appHTTP.RouterOptions{
		Logger:         logger,
		LogLevel:       cfg.SlogLevel(),
		AllowedOrigins: cfg.App.CORSOrigins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.NewScheduler()
	cron.NewBalanceJobs(ledger, cfg.App.ReconcileInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
