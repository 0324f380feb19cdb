package handlers

import (
	"Receipt-Scanner-Backend/domain"
	"Receipt-Scanner-Backend/entities"
	"Receipt-Scanner-Backend/internal/api/presenters"
	"Receipt-Scanner-Backend/pkg/receipt"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ReceiptHandler interface {
		UploadReceipt(c *fiber.Ctx) error
		GetReceipts(c *fiber.Ctx) error
		GetReceiptByID(c *fiber.Ctx) error
		UpdateReceipt(c *fiber.Ctx) error
		DeleteReceipt(c *fiber.Ctx) error
		ReprocessReceipt(c *fiber.Ctx) error
		GetCategories(c *fiber.Ctx) error
	}

	receiptHandler struct {
		receiptService receipt.ReceiptService
		validator      *validator.Validate
	}
)

func NewReceiptHandler(receiptService receipt.ReceiptService, validator *validator.Validate) ReceiptHandler {
	return &receiptHandler{
		receiptService: receiptService,
		validator:      validator,
	}
}

func (h *receiptHandler) UploadReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UploadReceiptRequest)

	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		req.ReceiptImage, _ = c.FormFile("receiptImage")
	} else if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.receiptService.UploadReceipt(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedUploadReceipt, err)
	}

	message := domain.MessageSuccessUploadReceipt
	if res.ProcessingStatus == entities.StatusFailed {
		message = domain.MessageUploadedButOcrFailed
	}

	return presenters.SuccessResponse(c, fiber.Map{"receipt": res}, fiber.StatusCreated, message)
}

func (h *receiptHandler) GetReceipts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	receipts, err := h.receiptService.GetReceipts(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetReceipts, err)
	}

	return presenters.SuccessResponse(c, receipts, fiber.StatusOK, domain.MessageSuccessGetReceipts)
}

func (h *receiptHandler) GetReceiptByID(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	receiptID := c.Params("id")

	res, err := h.receiptService.GetReceiptByID(c.Context(), receiptID, userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetReceipt, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetReceipt)
}

func (h *receiptHandler) UpdateReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	receiptID := c.Params("id")
	req := new(domain.UpdateReceiptRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateReceipt, err)
	}

	res, err := h.receiptService.UpdateReceipt(c.Context(), receiptID, *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedUpdateReceipt, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{"receipt": res}, fiber.StatusOK, domain.MessageSuccessUpdateReceipt)
}

func (h *receiptHandler) DeleteReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	receiptID := c.Params("id")

	if err := h.receiptService.DeleteReceipt(c.Context(), receiptID, userID); err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedDeleteReceipt, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteReceipt)
}

func (h *receiptHandler) ReprocessReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	receiptID := c.Params("id")

	res, err := h.receiptService.ReprocessReceipt(c.Context(), receiptID, userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedReprocessReceipt, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{"receipt": res}, fiber.StatusOK, domain.MessageSuccessReprocessReceipt)
}

func (h *receiptHandler) GetCategories(c *fiber.Ctx) error {
	return presenters.SuccessResponse(c, domain.DefaultCategories, fiber.StatusOK, domain.MessageSuccessGetCategories)
}

// statusForError maps service errors onto the HTTP taxonomy: 401 for
// credential failures, 404 for absent-or-not-owned records, 400 for bad
// input and the retry cap, 500 for storage and persistence failures.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrReceiptNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrMissingImage),
		errors.Is(err, domain.ErrInvalidImageFormat),
		errors.Is(err, domain.ErrImageTooLarge),
		errors.Is(err, domain.ErrInvalidImageURL),
		errors.Is(err, domain.ErrRetryLimitExceeded),
		errors.Is(err, domain.ErrParseUUID):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenMissingSub),
		errors.Is(err, domain.ErrTokenNotFound):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}
