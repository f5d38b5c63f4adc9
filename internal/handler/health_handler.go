package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mselheim/routegrader/internal/config"
	"github.com/mselheim/routegrader/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Provider    string    `json:"provider"`
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     "routegrader",
			Environment: cfg.AppEnv,
			Provider:    cfg.Provider,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
