package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mselheim/routegrader/internal/config"
	"github.com/mselheim/routegrader/internal/handler"
	"github.com/mselheim/routegrader/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradeHandler *handler.GradeHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api")
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.GradeHandler != nil {
		deps.GradeHandler.Register(api)
	}

	app.Get("/metrics", observability.MetricsHandler())
}
