package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Balance    BalanceHandler
	Leave      LeaveHandler
	Import     ImportHandler
	Report     ReportHandler
}

type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
}

func NewRouter(jwtService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService))
			r.Use(middleware.RequireLevel(1))

			r.Get("/auth/me", h.Auth.Me)
			r.Post("/timesheet/calculate", h.Attendance.Calculate)

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.Attendance.List)
				r.Post("/", h.Attendance.Record)
				r.Get("/export", h.Report.ExportAttendance)
				r.Get("/calendar", h.Report.Calendar)
				r.Get("/{id}", h.Attendance.Get)
				r.Put("/{id}", h.Attendance.Edit)
			})

			r.Route("/balance", func(r chi.Router) {
				r.Get("/me", h.Balance.Me)
				r.Get("/{employeeID}", h.Balance.Summary)
				r.Get("/{employeeID}/monthly", h.Balance.Monthly)
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Post("/", h.Leave.Submit)
				r.Get("/my", h.Leave.ListMine)
				r.Get("/{id}", h.Leave.Get)
				r.Post("/{id}/cancel", h.Leave.Cancel)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePrivileged)
					r.Get("/", h.Leave.List)
					r.Post("/{id}/approve", h.Leave.Approve)
					r.Post("/{id}/reject", h.Leave.Reject)
				})
			})

			r.With(middleware.RequirePrivileged).Post("/imports", h.Import.Upload)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}

// NewLogger builds the ECS JSON logger shared by the router and services.
func NewLogger(out io.Writer, level slog.Level, app, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("env", env),
	)
}
