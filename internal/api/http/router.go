package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/spec-kit/rental-service/internal/api/http/handlers"
	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Properties     *handlers.PropertiesHandler
	Applications   *handlers.ApplicationsHandler
	Bookings       *handlers.BookingsHandler
	Bills          *handlers.BillsHandler
	Feed           *handlers.FeedHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", metricsHandler(cfg.Metrics))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/reactivation-request", cfg.Users.RequestReactivation)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Users.Logout)

	me := app.Group("/me", cfg.AuthMiddleware.Handle)
	me.Get("/", cfg.Users.Me)
	me.Post("/verification/document", cfg.Users.SubmitDocument)

	properties := app.Group("/properties")
	properties.Get("/", cfg.Properties.List)
	properties.Get("/mine", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Properties.ListMine)
	properties.Get("/:id", cfg.Properties.Get)
	properties.Post("/", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Properties.Create)
	properties.Put("/:id", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Properties.Update)
	properties.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Properties.Delete)
	properties.Get("/:id/applications", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Applications.ListForProperty)
	properties.Get("/:id/bills", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Bills.ListForProperty)

	applications := app.Group("/applications", cfg.AuthMiddleware.Handle)
	applications.Post("/", auth.RequireRole(domain.RoleRenter), cfg.Applications.Submit)
	applications.Get("/mine", auth.RequireRole(domain.RoleRenter), cfg.Applications.ListMine)
	applications.Get("/received", auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Applications.ListReceived)
	applications.Patch("/:id/status", auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Applications.Process)

	bookings := app.Group("/bookings", cfg.AuthMiddleware.Handle)
	bookings.Post("/", auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Bookings.Create)
	bookings.Put("/:id", auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Bookings.Update)
	bookings.Post("/:id/close", auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Bookings.Close)
	bookings.Get("/mine", auth.RequireRole(domain.RoleRenter), cfg.Bookings.ListMine)
	bookings.Get("/active", auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Bookings.ListActive)

	bills := app.Group("/bills", cfg.AuthMiddleware.Handle)
	bills.Post("/", auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Bills.Create)
	bills.Post("/:id/pay", auth.RequireAuthenticated(), cfg.Bills.MarkPaid)
	bills.Get("/mine", auth.RequireRole(domain.RoleRenter), cfg.Bills.ListMine)

	feed := app.Group("/feed", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	feed.Get("/", cfg.Feed.List)
	feed.Post("/read-all", cfg.Feed.MarkAllRead)
	feed.Post("/:id/read", cfg.Feed.MarkRead)
	feed.Delete("/", cfg.Feed.ClearAll)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Post("/users/:id/verification/:channel/approve", cfg.Admin.ApproveChannel)
	admin.Post("/users/:id/verification/:channel/reject", cfg.Admin.RejectChannel)
	admin.Get("/users/:id/verification/document", cfg.Admin.DocumentURL)
	admin.Post("/users/:id/deactivate", cfg.Admin.Deactivate)
	admin.Post("/users/:id/reactivate", cfg.Admin.Reactivate)
}

func metricsHandler(metrics *observability.Metrics) fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
