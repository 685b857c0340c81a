package http

import (
	"log/slog"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	LogLevel       slog.Level
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	leaveHandler LeaveHandler,
	dashboardHandler DashboardHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/notifications", func(r chi.Router) {
			// SSE authenticates with a stream token in the query string
			r.Get("/stream", notificationHandler.Stream)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Get("/token", notificationHandler.StreamToken)
				r.Put("/read", notificationHandler.MarkAsRead)
				r.Put("/read-all", notificationHandler.MarkAllAsRead)
				r.Delete("/{id}", notificationHandler.Delete)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/leave", func(r chi.Router) {
				r.Route("/requests", func(r chi.Router) {
					r.Get("/", leaveHandler.ListRequests)
					r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", leaveHandler.CreateRequest)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", leaveHandler.GetRequest)
						r.Get("/history", leaveHandler.History)
						r.Delete("/", leaveHandler.CancelRequest)

						r.Group(func(r chi.Router) {
							r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
							r.Post("/approve", leaveHandler.ApproveRequest)
							r.Post("/reject", leaveHandler.RejectRequest)
						})
					})
				})

				r.Route("/approved", func(r chi.Router) {
					r.Get("/", leaveHandler.ListApproved)
					r.With(middleware.RequirePermission(user.PermissionLeaveGrant)).Post("/", leaveHandler.GrantLeave)
					r.With(middleware.RequirePermission(user.PermissionLeaveDeleteGranted)).Delete("/{id}", leaveHandler.DeleteApproved)
				})

				r.Route("/balance", func(r chi.Router) {
					r.Get("/active", leaveHandler.ActiveLeaves)
					r.Get("/remaining", leaveHandler.RemainingDays)
				})
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/leave-summary", dashboardHandler.GetLeaveSummary)
				r.Get("/leave-count", dashboardHandler.GetStatusCount)
			})
		})
	})
	return r
}
