package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/cli"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/config"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/attendance"
	balanceService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/balance"
	employeeService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/service/file"
	importService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/importer"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	opts := &cli.RootOptions{
		Connect: connect,
		Policy: func() (attendance.Policy, error) {
			return config.LoadPolicy(os.Getenv("POLICY_FILE"))
		},
	}
	if err := cli.NewRootCommand(opts).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*cli.Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolSize{MaxConns: 4})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	tx := postgresql.NewTxManager(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)

	jwtService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		db.Close()
		return nil, err
	}
	fileStorage, err := storage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.BaseURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}
	files := file.NewFileService(fileStorage)

	ledger := balanceService.NewLedger(tx, attendanceRepo, leaveRequestRepo, employeeRepo)
	attendanceSvc := attendanceService.NewAttendanceService(tx, cfg.Policy, attendanceRepo, employeeRepo, ledger)

	return &cli.Backend{
		Policy:    cfg.Policy,
		Ledger:    ledger,
		Imports:   importService.NewImportService(tx, employeeRepo, attendanceSvc, ledger, files),
		Employees: employeeService.NewEmployeeService(employeeRepo, jwtService),
		Files:     files,
		Close:     db.Close,
	}, nil
}
