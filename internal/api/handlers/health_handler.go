package handlers

import (
	"Receipt-Scanner-Backend/pkg/ocr"
	"time"

	"github.com/gofiber/fiber/v2"
)

type (
	HealthHandler interface {
		HealthCheck(c *fiber.Ctx) error
	}

	healthHandler struct {
		ocrService ocr.OcrService
	}
)

func NewHealthHandler(ocrService ocr.OcrService) HealthHandler {
	return &healthHandler{ocrService: ocrService}
}

// HealthCheck is the one unauthenticated route. The OCR service's health
// is reported best effort and never fails the check.
func (h *healthHandler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "API is running",
		"ocr_service": h.ocrService.Health(c.Context()),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
