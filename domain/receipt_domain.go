package domain

import (
	"Receipt-Scanner-Backend/entities"
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessUploadReceipt    = "Receipt uploaded and processed successfully"
	MessageUploadedButOcrFailed    = "Receipt uploaded but OCR processing failed"
	MessageSuccessGetReceipts      = "receipts retrieved successfully"
	MessageSuccessGetReceipt       = "receipt retrieved successfully"
	MessageSuccessUpdateReceipt    = "Receipt updated successfully"
	MessageSuccessDeleteReceipt    = "Receipt deleted successfully"
	MessageSuccessReprocessReceipt = "Receipt reprocessed successfully"
	MessageSuccessGetCategories    = "categories retrieved successfully"

	MessageFailedUploadReceipt    = "Upload failed"
	MessageFailedGetReceipts      = "Failed to fetch receipts"
	MessageFailedGetReceipt       = "Failed to fetch receipt"
	MessageFailedUpdateReceipt    = "Failed to update receipt"
	MessageFailedDeleteReceipt    = "Failed to delete receipt"
	MessageFailedReprocessReceipt = "Failed to reprocess receipt"

	ErrMissingImage       = errors.New("missing image file or data")
	ErrInvalidImageFormat = errors.New("invalid image format")
	ErrImageTooLarge      = errors.New("image exceeds maximum upload size")
	ErrReceiptNotFound    = errors.New("receipt not found")
	ErrInvalidImageURL    = errors.New("invalid image URL")
	ErrRetryLimitExceeded = errors.New("maximum retry attempts reached")
	ErrStorageFailed      = errors.New("failed to store receipt image")
	ErrPersistenceFailed  = errors.New("failed to store receipt metadata")
)

// MaxRetryCount caps how many times a receipt may be reprocessed.
const MaxRetryCount = 3

type (
	// UploadReceiptRequest carries exactly one image payload: a multipart
	// file part, or a base64 string from a JSON body (optionally prefixed
	// with a data: URI header).
	UploadReceiptRequest struct {
		ReceiptImage *multipart.FileHeader `json:"-" form:"receiptImage"`
		Image        string                `json:"image"`
	}

	// UpdateReceiptRequest holds the only fields a user may edit. Pointer
	// fields distinguish "absent" from "set to null"; any other key in the
	// incoming JSON is silently dropped by the decoder.
	UpdateReceiptRequest struct {
		StoreName    *string                 `json:"store_name" validate:"omitempty,max=255"`
		PurchaseDate *string                 `json:"purchase_date" validate:"omitempty,max=64"`
		TotalAmount  *float64                `json:"total_amount" validate:"omitempty,gte=0"`
		Items        *[]entities.ReceiptItem `json:"items" validate:"omitempty,dive"`
		Category     *string                 `json:"category" validate:"omitempty,max=100"`
	}

	ReceiptResponse struct {
		ID               string                 `json:"id"`
		UserID           string                 `json:"user_id"`
		ImageURL         string                 `json:"image_url"`
		ExtractedText    string                 `json:"extracted_text"`
		StoreName        *string                `json:"store_name"`
		TotalAmount      *float64               `json:"total_amount"`
		PurchaseDate     *string                `json:"purchase_date"`
		Items            []entities.ReceiptItem `json:"items"`
		ProcessingStatus string                 `json:"processing_status"`
		ConfidenceScore  float64                `json:"confidence_score"`
		IsManuallyEdited bool                   `json:"is_manually_edited"`
		RetryCount       int                    `json:"retry_count"`
		Category         *string                `json:"category"`
		CreatedAt        time.Time              `json:"created_at"`
		UpdatedAt        time.Time              `json:"updated_at"`
		PresignedURL     *string                `json:"presigned_url"`
	}

	// ExtractionResult is the OCR service's response shape. The service is
	// treated as unreliable: callers bound it with a timeout and absorb
	// every failure into the receipt's processing status instead of
	// propagating it.
	ExtractionResult struct {
		Success           bool                   `json:"success"`
		ExtractedText     string                 `json:"extracted_text"`
		StoreName         *string                `json:"store_name"`
		TotalAmount       *float64               `json:"total_amount"`
		PurchaseDate      *string                `json:"purchase_date"`
		Items             []entities.ReceiptItem `json:"items"`
		OverallConfidence float64                `json:"overall_confidence"`
		SuggestedCategory *string                `json:"suggested_category"`
		ErrorMessage      string                 `json:"error_message"`
	}
)
