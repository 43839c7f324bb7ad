package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/KrishanLala/KREIT-Score/internal/config"
	"github.com/KrishanLala/KREIT-Score/internal/database"
	applogger "github.com/KrishanLala/KREIT-Score/internal/logger"
	"github.com/KrishanLala/KREIT-Score/internal/middleware"
	"github.com/KrishanLala/KREIT-Score/internal/services"
	"github.com/KrishanLala/KREIT-Score/pkg/score"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ScoreHandler struct {
	service     *services.ScoreService
	shares      *services.ShareService
	userService *services.UserService
	log         *zap.SugaredLogger
}

// NewScoreHandler builds the score handler from explicitly constructed
// provider clients. Either client may be nil when unconfigured.
func NewScoreHandler(db *database.DB, properties services.PropertyFetcher, ai services.ChatCompleter) *ScoreHandler {
	return &ScoreHandler{
		service:     services.NewScoreService(db, properties, ai),
		shares:      services.NewShareService(db),
		userService: services.NewUserService(db),
		log:         applogger.GetLogger("handlers.score"),
	}
}

func SetupScoreRoutes(router fiber.Router, cfg *config.Config, h *ScoreHandler) {
	router.Post("/score", h.MockScore)
	router.Post("/kreit-score", middleware.OptionalAuth(cfg), h.Analyze)
	router.Post("/kreit-score/share", h.Share)
	router.Get("/shared/:share_id", h.GetShared)
}

type mockScoreRequest struct {
	Address string `json:"address"`
	Plan    string `json:"plan"`
}

type analyzeRequest struct {
	Address string `json:"address"`
}

type shareRequest struct {
	Address string `json:"address"`
}

// MockScore godoc
// @Summary Deterministic demo score for an address
// @Tags score
// @Accept json
// @Produce json
// @Param request body mockScoreRequest true "Address and plan"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /score [post]
func (h *ScoreHandler) MockScore(c *fiber.Ctx) error {
	var req mockScoreRequest
	// A malformed body is treated the same as a missing address
	_ = c.BodyParser(&req)

	// Trimmed once; the trimmed form is scored and echoed back
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Address is required to calculate a KREIT Score.",
		})
	}

	plan := score.ParsePlan(req.Plan)

	return c.JSON(fiber.Map{
		"address":      address,
		"plan":         plan,
		"score":        score.Generate(address, plan),
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// Analyze godoc
// @Summary Full KREIT Score analysis for an address
// @Tags score
// @Accept json
// @Produce json
// @Param request body analyzeRequest true "Address"
// @Success 200 {object} services.ScoreResponse
// @Failure 400 {object} ErrorResponse
// @Router /kreit-score [post]
func (h *ScoreHandler) Analyze(c *fiber.Ctx) error {
	var req analyzeRequest
	_ = c.BodyParser(&req)

	var userID *uint
	premium := false
	if id, ok := middleware.UserID(c); ok {
		userID = &id
		premium = h.userService.IsPremium(id)
	}

	resp, err := h.service.Analyze(c.UserContext(), req.Address, userID, premium)
	if err != nil {
		if errors.Is(err, services.ErrAddressRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Address is required.",
			})
		}
		h.log.Errorf("kreit score error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to generate KREIT Score at this time.",
		})
	}

	return c.JSON(resp)
}

// Share godoc
// @Summary Create a shareable snapshot of an analyzed address
// @Tags score
// @Accept json
// @Produce json
// @Param request body shareRequest true "Address"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /kreit-score/share [post]
func (h *ScoreHandler) Share(c *fiber.Ctx) error {
	var req shareRequest
	_ = c.BodyParser(&req)

	shared, err := h.shares.Create(c.UserContext(), req.Address)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAddressRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Address is required.",
			})
		case errors.Is(err, services.ErrShareNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No analysis found for this address.",
			})
		default:
			h.log.Errorf("share create error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to share this score at this time.",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"share_id":   shared.ShareID,
		"url":        "/v1/shared/" + shared.ShareID,
		"expires_at": shared.ExpiresAt,
	})
}

// GetShared godoc
// @Summary Fetch a shared score snapshot
// @Tags score
// @Produce json
// @Param share_id path string true "Share ID"
// @Success 200 {object} models.SharedScore
// @Failure 404 {object} ErrorResponse
// @Router /shared/{share_id} [get]
func (h *ScoreHandler) GetShared(c *fiber.Ctx) error {
	shared, err := h.shares.Get(c.UserContext(), c.Params("share_id"))
	if err != nil {
		if errors.Is(err, services.ErrShareNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Shared score not found.",
			})
		}
		h.log.Errorf("share lookup error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load this shared score.",
		})
	}

	return c.JSON(shared)
}
