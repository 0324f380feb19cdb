package entities

import (
	"github.com/google/uuid"
)

// Receipt processing statuses.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ReceiptItem is a single line item on a receipt. Stored as part of the
// receipt's jsonb items column, not as its own table.
type ReceiptItem struct {
	Name     string  `json:"name" validate:"max=255"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
}

type Receipt struct {
	ID               uuid.UUID     `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID           uuid.UUID     `gorm:"index" json:"user_id"`
	ImageURL         string        `json:"image_url"` // s3://bucket/key, set once at creation
	ExtractedText    string        `gorm:"type:text" json:"extracted_text"`
	StoreName        *string       `json:"store_name"`
	TotalAmount      *float64      `json:"total_amount"`
	PurchaseDate     *string       `json:"purchase_date"` // normalized YYYY-MM-DD
	Items            []ReceiptItem `gorm:"type:jsonb;serializer:json" json:"items"`
	ProcessingStatus string        `json:"processing_status"` // "pending", "success", "failed"
	ConfidenceScore  float64       `json:"confidence_score"`
	IsManuallyEdited bool          `json:"is_manually_edited"`
	RetryCount       int           `json:"retry_count"`
	Category         *string       `json:"category"`

	Timestamp
}
