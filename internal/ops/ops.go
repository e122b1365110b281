// Package ops: служебный HTTP. Liveness с пингом БД и выдача метрик Prometheus.
package ops

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flightwatch/price-tracker/pkg/logger"
)

const pingTimeout = 2 * time.Second

// Pinger реализует *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewApp собирает служебное приложение. gatherer обычно тот же реестр,
// на котором зарегистрированы метрики трекера.
func NewApp(db Pinger, gatherer prometheus.Gatherer, log logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "price-tracker ops",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())

	app.Get("/healthz", healthCheck(db, log))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return app
}

func healthCheck(db Pinger, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			log.Warn("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database unavailable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
		})
	}
}
