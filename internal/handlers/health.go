package handlers

import (
	"github.com/KrishanLala/KREIT-Score/internal/database"
	"github.com/gofiber/fiber/v2"
)

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}

// ReadinessCheck reports whether the database is reachable
func ReadinessCheck(db *database.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	}
}

// LivenessCheck reports process liveness
func LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}
