package receipt

import (
	"Receipt-Scanner-Backend/domain"
	"Receipt-Scanner-Backend/entities"
	"Receipt-Scanner-Backend/internal/utils"
	"Receipt-Scanner-Backend/internal/utils/storage"
	"Receipt-Scanner-Backend/pkg/ocr"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	presignExpiry          = 3600 * time.Second
	defaultMaxUploadSizeMB = 10
)

var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

type (
	ReceiptService interface {
		UploadReceipt(ctx context.Context, req domain.UploadReceiptRequest, userID string) (domain.ReceiptResponse, error)
		GetReceipts(ctx context.Context, userID string) ([]domain.ReceiptResponse, error)
		GetReceiptByID(ctx context.Context, id string, userID string) (domain.ReceiptResponse, error)
		UpdateReceipt(ctx context.Context, id string, req domain.UpdateReceiptRequest, userID string) (domain.ReceiptResponse, error)
		DeleteReceipt(ctx context.Context, id string, userID string) error
		ReprocessReceipt(ctx context.Context, id string, userID string) (domain.ReceiptResponse, error)
	}

	receiptService struct {
		receiptRepository ReceiptRepository
		s3                storage.AwsS3
		ocrService        ocr.OcrService
	}
)

func NewReceiptService(receiptRepository ReceiptRepository, s3 storage.AwsS3, ocrService ocr.OcrService) ReceiptService {
	return &receiptService{
		receiptRepository: receiptRepository,
		s3:                s3,
		ocrService:        ocrService,
	}
}

// UploadReceipt runs the full ingestion pipeline: parse the image
// payload, store the blob, delegate to OCR, persist the record and mint
// a viewable URL. Once the blob write has succeeded the pipeline keeps
// going: an OCR failure is recorded into the receipt rather than failing
// the request, and only a failed insert aborts after that point.
func (s *receiptService) UploadReceipt(ctx context.Context, req domain.UploadReceiptRequest, userID string) (domain.ReceiptResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ReceiptResponse{}, domain.ErrParseUUID
	}

	imageBytes, originalFilename, contentType, err := resolveImagePayload(req)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}

	if int64(len(imageBytes)) > maxUploadBytes() {
		return domain.ReceiptResponse{}, domain.ErrImageTooLarge
	}
	if !storage.AllowedImageType(contentType) {
		return domain.ReceiptResponse{}, domain.ErrInvalidImageFormat
	}

	// Keys are scoped under the user and sortable by time within that
	// namespace; the random token keeps repeated uploads from colliding.
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ext == "" {
		ext = ".jpg"
	}
	objectKey := fmt.Sprintf("receipts/%s/%d_%s%s", userID, time.Now().UnixMilli(), uuid.New().String()[:8], ext)

	imageURL, err := s.s3.UploadFile(ctx, objectKey, imageBytes, contentType, map[string]string{
		"user-id":           userID,
		"original-filename": originalFilename,
	})
	if err != nil {
		log.Errorf("error uploading receipt image: %v", err)
		return domain.ReceiptResponse{}, domain.ErrStorageFailed
	}

	receipt := &entities.Receipt{
		ID:               uuid.New(),
		UserID:           userUUID,
		ImageURL:         imageURL,
		ExtractedText:    "",
		Items:            []entities.ReceiptItem{},
		ProcessingStatus: entities.StatusPending,
		ConfidenceScore:  0,
		IsManuallyEdited: false,
		RetryCount:       0,
	}

	s.applyExtraction(ctx, receipt, imageBytes)

	if err := s.receiptRepository.CreateReceipt(ctx, receipt); err != nil {
		// The blob stays behind; orphaned blobs are accepted rather than
		// compensated with a delete.
		log.Errorf("error storing receipt metadata: %v", err)
		return domain.ReceiptResponse{}, domain.ErrPersistenceFailed
	}

	return s.toResponse(ctx, receipt), nil
}

// applyExtraction invokes OCR and folds the outcome into the receipt.
// Errors from the OCR service never escape: they are recorded as a
// failed processing status with a readable description.
func (s *receiptService) applyExtraction(ctx context.Context, receipt *entities.Receipt, imageBytes []byte) {
	result, err := s.ocrService.ProcessReceipt(ctx, imageBytes)
	if err != nil {
		log.Warnf("OCR processing error for receipt %s: %v", receipt.ID, err)
		receipt.ProcessingStatus = entities.StatusFailed
		receipt.ExtractedText = fmt.Sprintf("OCR service error: %s", err.Error())
		return
	}

	if !result.Success {
		receipt.ProcessingStatus = entities.StatusFailed
		if result.ErrorMessage != "" {
			receipt.ExtractedText = result.ErrorMessage
		} else {
			receipt.ExtractedText = "OCR processing failed"
		}
		return
	}

	receipt.ProcessingStatus = entities.StatusSuccess
	receipt.ExtractedText = result.ExtractedText
	receipt.StoreName = result.StoreName
	receipt.TotalAmount = result.TotalAmount
	receipt.ConfidenceScore = result.OverallConfidence
	receipt.Category = result.SuggestedCategory
	if result.Items != nil {
		receipt.Items = result.Items
	}
	if result.PurchaseDate != nil {
		receipt.PurchaseDate = NormalizeDate(*result.PurchaseDate)
	}
}

func (s *receiptService) GetReceipts(ctx context.Context, userID string) ([]domain.ReceiptResponse, error) {
	receipts, err := s.receiptRepository.GetReceipts(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Presigning is one independent GET per record; fan out and let each
	// goroutine fill only its own slot.
	responses := make([]domain.ReceiptResponse, len(receipts))
	var wg sync.WaitGroup
	for i, rec := range receipts {
		wg.Add(1)
		go func(i int, rec *entities.Receipt) {
			defer wg.Done()
			responses[i] = s.toResponse(ctx, rec)
		}(i, rec)
	}
	wg.Wait()

	return responses, nil
}

func (s *receiptService) GetReceiptByID(ctx context.Context, id string, userID string) (domain.ReceiptResponse, error) {
	receipt, err := s.receiptRepository.GetReceiptByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReceiptResponse{}, domain.ErrReceiptNotFound
		}
		return domain.ReceiptResponse{}, err
	}

	return s.toResponse(ctx, receipt), nil
}

func (s *receiptService) UpdateReceipt(ctx context.Context, id string, req domain.UpdateReceiptRequest, userID string) (domain.ReceiptResponse, error) {
	fields := map[string]interface{}{
		"is_manually_edited": true,
	}
	if req.StoreName != nil {
		fields["store_name"] = *req.StoreName
	}
	if req.PurchaseDate != nil {
		fields["purchase_date"] = *req.PurchaseDate
	}
	if req.TotalAmount != nil {
		fields["total_amount"] = *req.TotalAmount
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Items != nil {
		itemsJSON, err := json.Marshal(*req.Items)
		if err != nil {
			return domain.ReceiptResponse{}, err
		}
		fields["items"] = string(itemsJSON)
	}

	receipt, err := s.receiptRepository.UpdateReceiptFields(ctx, id, userID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReceiptResponse{}, domain.ErrReceiptNotFound
		}
		return domain.ReceiptResponse{}, err
	}

	return s.toResponse(ctx, receipt), nil
}

func (s *receiptService) DeleteReceipt(ctx context.Context, id string, userID string) error {
	receipt, err := s.receiptRepository.GetReceiptByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrReceiptNotFound
		}
		return err
	}

	if _, objectKey, ok := storage.ParseS3URI(receipt.ImageURL); ok {
		if err := s.s3.DeleteFile(ctx, objectKey); err != nil {
			log.Warnf("error deleting receipt image %s: %v", objectKey, err)
		}
	}

	if err := s.receiptRepository.DeleteReceipt(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrReceiptNotFound
		}
		return err
	}
	return nil
}

// ReprocessReceipt re-runs OCR against the already-stored blob. The one
// guaranteed side effect, whatever OCR does, is that retry_count goes up
// by exactly one and updated_at is refreshed; extracted fields are only
// overwritten on a successful extraction.
func (s *receiptService) ReprocessReceipt(ctx context.Context, id string, userID string) (domain.ReceiptResponse, error) {
	receipt, err := s.receiptRepository.GetReceiptByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReceiptResponse{}, domain.ErrReceiptNotFound
		}
		return domain.ReceiptResponse{}, err
	}

	if receipt.RetryCount >= domain.MaxRetryCount {
		return domain.ReceiptResponse{}, domain.ErrRetryLimitExceeded
	}

	_, objectKey, ok := storage.ParseS3URI(receipt.ImageURL)
	if !ok {
		return domain.ReceiptResponse{}, domain.ErrInvalidImageURL
	}

	imageBytes, err := s.s3.DownloadFile(ctx, objectKey)
	if err != nil {
		log.Errorf("error downloading receipt image %s: %v", objectKey, err)
		return domain.ReceiptResponse{}, domain.ErrStorageFailed
	}

	// Incremented in the database so two concurrent reprocess calls
	// cannot collapse into a single bump.
	fields := map[string]interface{}{
		"retry_count": gorm.Expr("retry_count + ?", 1),
	}

	result, ocrErr := s.ocrService.ProcessReceipt(ctx, imageBytes)
	if ocrErr == nil && result.Success {
		fields["extracted_text"] = result.ExtractedText
		fields["store_name"] = result.StoreName
		fields["total_amount"] = result.TotalAmount
		fields["confidence_score"] = result.OverallConfidence
		fields["category"] = result.SuggestedCategory
		fields["processing_status"] = entities.StatusSuccess

		var purchaseDate *string
		if result.PurchaseDate != nil {
			purchaseDate = NormalizeDate(*result.PurchaseDate)
		}
		fields["purchase_date"] = purchaseDate

		items := result.Items
		if items == nil {
			items = []entities.ReceiptItem{}
		}
		itemsJSON, err := json.Marshal(items)
		if err != nil {
			return domain.ReceiptResponse{}, err
		}
		fields["items"] = string(itemsJSON)
	} else if ocrErr != nil {
		log.Warnf("OCR reprocessing error for receipt %s: %v", receipt.ID, ocrErr)
	}

	updated, err := s.receiptRepository.UpdateReceiptFields(ctx, id, userID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReceiptResponse{}, domain.ErrReceiptNotFound
		}
		return domain.ReceiptResponse{}, err
	}

	return s.toResponse(ctx, updated), nil
}

// toResponse maps a receipt entity to its API shape and attaches a
// time-limited read URL. Presign failures degrade to a null URL rather
// than failing the request.
func (s *receiptService) toResponse(ctx context.Context, receipt *entities.Receipt) domain.ReceiptResponse {
	var presignedURL *string
	if _, objectKey, ok := storage.ParseS3URI(receipt.ImageURL); ok {
		if link, err := s.s3.PresignLink(ctx, objectKey, presignExpiry); err == nil {
			presignedURL = &link
		} else {
			log.Warnf("error generating presigned URL for %s: %v", objectKey, err)
		}
	}

	items := receipt.Items
	if items == nil {
		items = []entities.ReceiptItem{}
	}

	return domain.ReceiptResponse{
		ID:               receipt.ID.String(),
		UserID:           receipt.UserID.String(),
		ImageURL:         receipt.ImageURL,
		ExtractedText:    receipt.ExtractedText,
		StoreName:        receipt.StoreName,
		TotalAmount:      receipt.TotalAmount,
		PurchaseDate:     receipt.PurchaseDate,
		Items:            items,
		ProcessingStatus: receipt.ProcessingStatus,
		ConfidenceScore:  receipt.ConfidenceScore,
		IsManuallyEdited: receipt.IsManuallyEdited,
		RetryCount:       receipt.RetryCount,
		Category:         receipt.Category,
		CreatedAt:        receipt.CreatedAt,
		UpdatedAt:        receipt.UpdatedAt,
		PresignedURL:     presignedURL,
	}
}

// resolveImagePayload accepts either a multipart file part or a base64
// string from a JSON body. Exactly one payload is required.
func resolveImagePayload(req domain.UploadReceiptRequest) ([]byte, string, string, error) {
	if req.ReceiptImage != nil {
		file, err := req.ReceiptImage.Open()
		if err != nil {
			return nil, "", "", domain.ErrInvalidImageFormat
		}
		defer file.Close()

		imageBytes, err := io.ReadAll(file)
		if err != nil {
			return nil, "", "", domain.ErrInvalidImageFormat
		}

		originalFilename := req.ReceiptImage.Filename
		if originalFilename == "" {
			originalFilename = "receipt.jpg"
		}

		contentType := req.ReceiptImage.Header.Get("Content-Type")
		if contentType == "" {
			contentType = contentTypeFromFilename(originalFilename)
		}
		return imageBytes, originalFilename, contentType, nil
	}

	if req.Image != "" {
		contentType := "image/jpeg"
		raw := req.Image
		if m := dataURIPrefix.FindString(raw); m != "" {
			contentType = strings.TrimSuffix(strings.TrimPrefix(m, "data:"), ";base64,")
			raw = strings.TrimPrefix(raw, m)
		}

		imageBytes, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, "", "", domain.ErrInvalidImageFormat
		}
		return imageBytes, "receipt.jpg", contentType, nil
	}

	return nil, "", "", domain.ErrMissingImage
}

func contentTypeFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

func maxUploadBytes() int64 {
	sizeMB := defaultMaxUploadSizeMB
	if raw := utils.GetConfig("MAX_UPLOAD_SIZE_MB"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			sizeMB = parsed
		}
	}
	return int64(sizeMB) * 1024 * 1024
}
