package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"flowdraw/internal/cache"
)

// HealthHandler reports liveness of the service and its backends.
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.RedisClient
}

func NewHealthHandler(db *gorm.DB, rc *cache.RedisClient) *HealthHandler {
	return &HealthHandler{db: db, cache: rc}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	redisStatus := "ok"
	if err := h.cache.Health(c.Context()); err != nil {
		redisStatus = "down"
	}

	status := fiber.StatusOK
	if dbStatus != "ok" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   dbStatus,
		"database": dbStatus,
		"redis":    redisStatus,
	})
}
