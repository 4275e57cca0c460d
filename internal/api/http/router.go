package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pdch/pdch-server/internal/api/http/handlers"
	"github.com/pdch/pdch-server/internal/auth"
	apperrors "github.com/pdch/pdch-server/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health             *handlers.HealthHandler
	Users              *handlers.UsersHandler
	Supplies           *handlers.DocumentsHandler
	CommunityGratitude *handlers.DocumentsHandler
	Testimonials       *handlers.DocumentsHandler
	Volunteers         *handlers.DocumentsHandler
	AuthMiddleware     *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	v1 := app.Group("/api/v1")
	v1.Post("/register", cfg.Users.Register)
	v1.Post("/login", cfg.Users.Login)
	v1.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	supplies := v1.Group("/supplies")
	supplies.Get("/", cfg.Supplies.List)
	supplies.Get("/:id", cfg.Supplies.Get)
	supplies.Post("/", cfg.Supplies.Create)
	supplies.Put("/:id", cfg.Supplies.Update)
	supplies.Delete("/:id", cfg.Supplies.Delete)

	registerSubmissions(v1, "/community-gratitude", cfg.CommunityGratitude)
	registerSubmissions(v1, "/testimonial", cfg.Testimonials)
	registerSubmissions(v1, "/volunteer", cfg.Volunteers)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("route", map[string]any{"method": c.Method(), "path": c.Path()})
	})
}

func registerSubmissions(router fiber.Router, path string, h *handlers.DocumentsHandler) {
	router.Get(path, h.List)
	router.Post(path, h.Create)
}
