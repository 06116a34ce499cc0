package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/content-crm/internal/observability"
)

// HealthHandler reports liveness, dependency readiness and workflow
// counters.
type HealthHandler struct {
	pool    *pgxpool.Pool
	rdb     *redis.Client
	metrics *observability.Metrics
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{pool: pool, rdb: rdb, metrics: metrics}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if h.pool != nil {
		if err := h.pool.Ping(c.Context()); err != nil {
			checks["postgres"] = err.Error()
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	}
	if h.rdb != nil {
		if err := h.rdb.Ping(c.Context()).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"status": statusLabel(healthy), "checks": checks})
}

// Stats GET /health/stats.
func (h *HealthHandler) Stats(c *fiber.Ctx) error {
	transitions, rejections := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"transitions": transitions,
		"rejections":  rejections,
	})
}

func statusLabel(healthy bool) string {
	if healthy {
		return "ok"
	}
	return "degraded"
}
