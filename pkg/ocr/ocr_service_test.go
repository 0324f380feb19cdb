package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProcessReceiptDecodesResult(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/process" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":            true,
			"extracted_text":     "Acme\nTotal 12.50",
			"store_name":         "Acme",
			"total_amount":       12.50,
			"overall_confidence": 0.9,
		})
	}))
	defer server.Close()

	service := NewOcrService(server.URL)
	result, err := service.ProcessReceipt(context.Background(), []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("process returned error: %v", err)
	}

	if !result.Success {
		t.Fatalf("expected success")
	}
	if result.StoreName == nil || *result.StoreName != "Acme" {
		t.Fatalf("unexpected store name %v", result.StoreName)
	}
	if result.OverallConfidence != 0.9 {
		t.Fatalf("unexpected confidence %f", result.OverallConfidence)
	}

	// the image travels base64-encoded with quality enhancement requested
	if received["image"] != base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")) {
		t.Fatalf("expected base64 image in request")
	}
	if received["enhance_quality"] != true {
		t.Fatalf("expected enhance_quality flag")
	}
}

func TestProcessReceiptNon200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewOcrService(server.URL)
	if _, err := service.ProcessReceipt(context.Background(), []byte("x")); err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}

func TestProcessReceiptUnreachableService(t *testing.T) {
	service := NewOcrService("http://127.0.0.1:1")
	if _, err := service.ProcessReceipt(context.Background(), []byte("x")); err == nil {
		t.Fatalf("expected error when service is unreachable")
	}
}

func TestProcessReceiptUnconfiguredURL(t *testing.T) {
	service := NewOcrService("")
	if _, err := service.ProcessReceipt(context.Background(), []byte("x")); err == nil {
		t.Fatalf("expected error when URL is not configured")
	}
}

func TestHealthDegrades(t *testing.T) {
	if got := NewOcrService("").Health(context.Background()); got != "unknown" {
		t.Fatalf("expected unknown for unconfigured URL, got %s", got)
	}
	if got := NewOcrService("http://127.0.0.1:1").Health(context.Background()); got != "unhealthy" {
		t.Fatalf("expected unhealthy for unreachable service, got %s", got)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer server.Close()
	if got := NewOcrService(server.URL).Health(context.Background()); got != "healthy" {
		t.Fatalf("expected healthy, got %s", got)
	}
}
