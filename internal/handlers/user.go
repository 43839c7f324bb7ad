package handlers

import (
	"github.com/KrishanLala/KREIT-Score/internal/database"
	"github.com/KrishanLala/KREIT-Score/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(db *database.DB) *UserHandler {
	return &UserHandler{
		service: services.NewUserService(db),
	}
}

func SetupUserRoutes(router fiber.Router, db *database.DB) {
	h := NewUserHandler(db)

	router.Get("/me", h.GetMe)
}

// GetMe godoc
// @Summary Get current user info
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := h.service.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(user)
}
