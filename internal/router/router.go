package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/useglide/glide/internal/config"
	"github.com/useglide/glide/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler    *handler.CourseHandler
	AnalyticsHandler *handler.AnalyticsHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	protected := app.Group("/api/v1", jwtMiddleware)

	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(protected)
	}

	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(protected)
	}
}
