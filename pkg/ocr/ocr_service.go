package ocr

import (
	"Receipt-Scanner-Backend/domain"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// The OCR service must never hang an ingestion request indefinitely.
const (
	processTimeout = 30 * time.Second
	healthTimeout  = 3 * time.Second
)

type (
	// OcrService talks to the external text/field-extraction service. The
	// service is an unreliable collaborator: any transport error, timeout
	// or non-200 response surfaces as an error the caller is expected to
	// absorb, not propagate.
	OcrService interface {
		ProcessReceipt(ctx context.Context, imageBytes []byte) (domain.ExtractionResult, error)
		Health(ctx context.Context) string
	}

	ocrService struct {
		baseURL string
		client  *http.Client
	}
)

func NewOcrService(baseURL string) OcrService {
	return &ocrService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: processTimeout},
	}
}

func (s *ocrService) ProcessReceipt(ctx context.Context, imageBytes []byte) (domain.ExtractionResult, error) {
	if s.baseURL == "" {
		return domain.ExtractionResult{}, fmt.Errorf("OCR service URL not configured")
	}

	requestBody := map[string]interface{}{
		"image":           base64.StdEncoding.EncodeToString(imageBytes),
		"enhance_quality": true,
	}

	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return domain.ExtractionResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/process", bytes.NewBuffer(requestJSON))
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("error calling OCR service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return domain.ExtractionResult{}, fmt.Errorf("OCR service error: %s - %s", resp.Status, string(bodyBytes))
	}

	var result domain.ExtractionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("error parsing OCR response: %w", err)
	}

	return result, nil
}

// Health reports the OCR service's health for the public health check.
// Best effort: any failure degrades to "unhealthy" rather than erroring.
func (s *ocrService) Health(ctx context.Context) string {
	if s.baseURL == "" {
		return "unknown"
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return "unknown"
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "unhealthy"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "unhealthy"
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Status == "" {
		return "healthy"
	}
	return body.Status
}
