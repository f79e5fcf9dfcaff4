package routes

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes exposes liveness probing.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		checks := fiber.Map{"app": "ok"}
		if d.DB != nil {
			if err := d.DB.Ping(c.UserContext()); err != nil {
				checks["postgres"] = err.Error()
				return c.Status(http.StatusServiceUnavailable).JSON(checks)
			}
			checks["postgres"] = "ok"
		}
		if d.Cache != nil {
			if err := d.Cache.Ping(c.UserContext()).Err(); err != nil {
				checks["redis"] = err.Error()
				return c.Status(http.StatusServiceUnavailable).JSON(checks)
			}
			checks["redis"] = "ok"
		}
		checks["timestamp"] = time.Now().UTC().Format(time.RFC3339)
		return c.Status(http.StatusOK).JSON(checks)
	})
}
