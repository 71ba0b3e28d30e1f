package handlers

import (
	"time"

	"voltcart/internal/config"
	"voltcart/internal/http/api"
	"voltcart/internal/log"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
)

// HealthHandler sits outside the pipeline: no rate limit, no auth.
type HealthHandler struct {
	DB      *sqlx.DB
	Cfg     config.Config
	Log     *log.Logger
	Started time.Time
}

// GET /api/health
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	_, err := api.Measure(h.Log, "health_check", map[string]any{"driver": h.Cfg.DBDriver}, func() (struct{}, error) {
		return struct{}{}, h.DB.PingContext(c.UserContext())
	})
	body := fiber.Map{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		"version":     h.Cfg.Version,
		"environment": h.Cfg.Env,
		"uptime":      time.Since(h.Started).Seconds(),
		"since":       humanize.Time(h.Started),
	}
	if err != nil {
		body["status"] = "unhealthy"
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}
