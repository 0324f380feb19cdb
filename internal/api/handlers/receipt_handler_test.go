package handlers

import (
	"Receipt-Scanner-Backend/domain"
	"Receipt-Scanner-Backend/entities"
	"Receipt-Scanner-Backend/internal/utils"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type stubReceiptService struct {
	response     domain.ReceiptResponse
	err          error
	updateCalled bool
}

func (s *stubReceiptService) UploadReceipt(_ context.Context, _ domain.UploadReceiptRequest, _ string) (domain.ReceiptResponse, error) {
	return s.response, s.err
}

func (s *stubReceiptService) GetReceipts(_ context.Context, _ string) ([]domain.ReceiptResponse, error) {
	return []domain.ReceiptResponse{s.response}, s.err
}

func (s *stubReceiptService) GetReceiptByID(_ context.Context, _ string, _ string) (domain.ReceiptResponse, error) {
	return s.response, s.err
}

func (s *stubReceiptService) UpdateReceipt(_ context.Context, _ string, _ domain.UpdateReceiptRequest, _ string) (domain.ReceiptResponse, error) {
	s.updateCalled = true
	return s.response, s.err
}

func (s *stubReceiptService) DeleteReceipt(_ context.Context, _ string, _ string) error {
	return s.err
}

func (s *stubReceiptService) ReprocessReceipt(_ context.Context, _ string, _ string) (domain.ReceiptResponse, error) {
	return s.response, s.err
}

func testApp(service *stubReceiptService) *fiber.App {
	utils.InitValidator()
	handler := NewReceiptHandler(service, utils.Validate)

	app := fiber.New()
	withUser := func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-123")
		return c.Next()
	}
	app.Post("/upload", withUser, handler.UploadReceipt)
	app.Get("/receipts", withUser, handler.GetReceipts)
	app.Get("/receipts/:id", withUser, handler.GetReceiptByID)
	app.Put("/receipts/:id", withUser, handler.UpdateReceipt)
	app.Post("/receipts/:id/reprocess", withUser, handler.ReprocessReceipt)
	app.Get("/categories", withUser, handler.GetCategories)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", raw, err)
	}
	return body
}

func TestUploadHandlerReturns201WithReceipt(t *testing.T) {
	app := testApp(&stubReceiptService{
		response: domain.ReceiptResponse{ID: "abc", ProcessingStatus: entities.StatusSuccess},
	})

	payload, _ := json.Marshal(fiber.Map{"image": "aGVsbG8="})
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["message"] != domain.MessageSuccessUploadReceipt {
		t.Fatalf("unexpected message %v", body["message"])
	}
	if _, ok := body["receipt"]; !ok {
		t.Fatalf("expected receipt in response body")
	}
}

func TestUploadHandlerSignalsOcrFailure(t *testing.T) {
	app := testApp(&stubReceiptService{
		response: domain.ReceiptResponse{ID: "abc", ProcessingStatus: entities.StatusFailed},
	})

	payload, _ := json.Marshal(fiber.Map{"image": "aGVsbG8="})
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	// OCR failure is data, not a request failure
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != domain.MessageUploadedButOcrFailed {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestUploadHandlerMapsMissingImageTo400(t *testing.T) {
	app := testApp(&stubReceiptService{err: domain.ErrMissingImage})

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetReceiptHandlerMapsNotFoundTo404(t *testing.T) {
	app := testApp(&stubReceiptService{err: domain.ErrReceiptNotFound})

	req := httptest.NewRequest(http.MethodGet, "/receipts/missing", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestReprocessHandlerMapsRetryLimitTo400(t *testing.T) {
	app := testApp(&stubReceiptService{err: domain.ErrRetryLimitExceeded})

	req := httptest.NewRequest(http.MethodPost, "/receipts/abc/reprocess", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUploadHandlerMapsStorageFailureTo500(t *testing.T) {
	app := testApp(&stubReceiptService{err: domain.ErrStorageFailed})

	payload, _ := json.Marshal(fiber.Map{"image": "aGVsbG8="})
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestUpdateHandlerRejectsNegativeTotal(t *testing.T) {
	service := &stubReceiptService{}
	app := testApp(service)

	payload, _ := json.Marshal(fiber.Map{"total_amount": -5.0})
	req := httptest.NewRequest(http.MethodPut, "/receipts/abc", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.updateCalled {
		t.Fatal("invalid body must be rejected before the service is called")
	}
}

func TestUpdateHandlerRejectsNegativeItemPrice(t *testing.T) {
	service := &stubReceiptService{}
	app := testApp(service)

	payload, _ := json.Marshal(fiber.Map{
		"items": []fiber.Map{{"name": "Milk", "price": -2.5, "quantity": 1}},
	})
	req := httptest.NewRequest(http.MethodPut, "/receipts/abc", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.updateCalled {
		t.Fatal("invalid body must be rejected before the service is called")
	}
}

func TestGetCategoriesReturnsFixedEnumeration(t *testing.T) {
	app := testApp(&stubReceiptService{})

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var categories []domain.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		t.Fatalf("failed to decode categories: %v", err)
	}
	if len(categories) != len(domain.DefaultCategories) {
		t.Fatalf("expected %d categories, got %d", len(domain.DefaultCategories), len(categories))
	}
	if categories[0].Name != "Groceries" || categories[0].Color != "#4CAF50" {
		t.Fatalf("unexpected first category: %+v", categories[0])
	}
}
