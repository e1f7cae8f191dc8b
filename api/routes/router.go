package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rationsetu/rationsetu-backend/api/controllers"
	"github.com/rationsetu/rationsetu-backend/api/middleware"
	"github.com/rationsetu/rationsetu-backend/internal/allocations"
	"github.com/rationsetu/rationsetu-backend/internal/auth"
	"github.com/rationsetu/rationsetu-backend/internal/complaints"
	"github.com/rationsetu/rationsetu-backend/internal/notifications"
	"github.com/rationsetu/rationsetu-backend/internal/stocks"
	"github.com/rationsetu/rationsetu-backend/internal/timeslots"
	"github.com/rationsetu/rationsetu-backend/internal/users"
	"github.com/rationsetu/rationsetu-backend/pkg/auth/session"
	"github.com/rationsetu/rationsetu-backend/pkg/config"
	"github.com/rationsetu/rationsetu-backend/pkg/db"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
	"github.com/rationsetu/rationsetu-backend/pkg/logger"
	"github.com/rationsetu/rationsetu-backend/pkg/metrics"
	"github.com/rationsetu/rationsetu-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics

	Auth          auth.Service
	Users         users.Service
	Stocks        stocks.Service
	Allocations   allocations.Service
	TimeSlots     timeslots.Service
	Complaints    complaints.Service
	Notifications notifications.Service
}

// NewRouter assembles the full route tree.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(p.HTTPMetrics),
	)

	// Typed nil pointers must not reach the middleware nil checks.
	var authLimiter interface {
		IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	}
	var idemStore redis.IdempotencyStore
	if p.Redis != nil {
		authLimiter = p.Redis
		idemStore = p.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Redis, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, authLimiter, logg),
			middleware.Idempotency(idemStore, logg),
		).Post("/register", controllers.AuthRegister(p.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, authLimiter, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
			r.Post("/logout", controllers.AuthLogout(p.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

			r.Route("/stocks", func(r chi.Router) {
				r.Post("/", controllers.CreateStock(p.Stocks, logg))
				r.Get("/", controllers.ListStocks(p.Stocks, logg))
				r.Get("/catalog", controllers.StockCatalog(p.Stocks, logg))
				r.Put("/{stockId}", controllers.UpdateStock(p.Stocks, logg))
				r.Post("/allocate", controllers.AllocateStock(p.Allocations, logg))
			})
			r.Get("/allocated-stocks", controllers.ListAllocatedStocks(p.Allocations, logg))

			r.Get("/users", controllers.ListUsers(p.Users, logg))
			r.Get("/village-admins", controllers.ListVillageAdmins(p.Users, logg))
			r.Post("/make-village-admin", controllers.MakeVillageAdmin(p.Users, logg))

			r.Get("/complaints", controllers.ListComplaints(p.Complaints, logg))
			r.Put("/complaints/{complaintId}/status", controllers.ResolveComplaint(p.Complaints, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Post("/", controllers.CreateNotification(p.Notifications, logg))
				r.Get("/", controllers.ListNotifications(p.Notifications, logg))
				r.Put("/{notificationId}", controllers.UpdateNotification(p.Notifications, logg))
				r.Delete("/{notificationId}", controllers.DeleteNotification(p.Notifications, logg))
			})
		})

		r.Route("/village-admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleVillageAdmin))
			r.Use(middleware.RequireVillage(logg))

			r.Get("/allocated-stocks", controllers.ListMyAllocations(p.Allocations, logg))
			r.Post("/allocate-stock", controllers.AllocateStockToUser(p.Allocations, logg))
			r.Post("/allocate-stock-bulk", controllers.AllocateStockBulk(p.Allocations, logg))
			r.Get("/users", controllers.ListVillageUsers(p.Users, logg))
		})

		r.Route("/timeslots", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin, enums.UserRoleVillageAdmin))
				r.Post("/create", controllers.CreateTimeSlot(p.TimeSlots, logg))
				r.Get("/all", controllers.ListAllTimeSlots(p.TimeSlots, logg))
				r.Post("/assign", controllers.AssignTimeSlot(p.TimeSlots, logg))
				r.Post("/remove", controllers.RemoveTimeSlotBooking(p.TimeSlots, logg))
				r.Put("/{slotId}", controllers.UpdateTimeSlot(p.TimeSlots, logg))
				r.Delete("/{slotId}", controllers.DeleteTimeSlot(p.TimeSlots, logg))
			})
			r.With(middleware.RequireRole(logg, enums.UserRoleVillageAdmin)).Get("/village", controllers.ListVillageTimeSlots(p.TimeSlots, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleUser))
				r.Get("/available", controllers.ListAvailableTimeSlots(p.TimeSlots, logg))
				r.Post("/book", controllers.BookTimeSlot(p.TimeSlots, logg))
				r.Post("/cancel", controllers.CancelTimeSlotBooking(p.TimeSlots, logg))
				r.Get("/my-booking", controllers.MyTimeSlotBooking(p.TimeSlots, logg))
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleUser))
				r.Post("/complaints", controllers.CreateComplaint(p.Complaints, logg))
				r.Get("/complaints/my", controllers.MyComplaints(p.Complaints, logg))
			})
			// Broadcasts are readable by every authenticated role.
			r.Get("/notifications", controllers.ListNotifications(p.Notifications, logg))
			r.Get("/notifications/{notificationId}", controllers.GetNotification(p.Notifications, logg))
		})
	})

	return r
}
