package handlers

import (
	"errors"

	"github.com/KrishanLala/KREIT-Score/internal/config"
	applogger "github.com/KrishanLala/KREIT-Score/internal/logger"
	"github.com/KrishanLala/KREIT-Score/internal/middleware"
	"github.com/KrishanLala/KREIT-Score/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	service *services.CheckoutService
	log     *zap.SugaredLogger
}

func NewCheckoutHandler(payments services.CheckoutSessionCreator, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		service: services.NewCheckoutService(payments, cfg),
		log:     applogger.GetLogger("handlers.checkout"),
	}
}

func SetupCheckoutRoutes(router fiber.Router, cfg *config.Config, h *CheckoutHandler) {
	router.Post("/checkout", middleware.OptionalAuth(cfg), h.CreateSession)
}

// CreateSession godoc
// @Summary Start a subscription checkout
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /checkout [post]
func (h *CheckoutHandler) CreateSession(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "You must be signed in to upgrade.",
		})
	}

	url, err := h.service.CreateSession(c.UserContext(), userID, c.Get("Origin"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCheckoutNotConfigured):
			h.log.Error("checkout requested but Stripe is not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Stripe is not configured.",
			})
		case errors.Is(err, services.ErrNoCheckoutURL):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Stripe did not return a checkout URL.",
			})
		default:
			h.log.Errorf("stripe checkout error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to start checkout. Please try again shortly.",
			})
		}
	}

	return c.JSON(fiber.Map{"url": url})
}
