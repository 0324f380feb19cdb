package receipt

import (
	"Receipt-Scanner-Backend/entities"
	"context"
	"gorm.io/gorm"
)

type (
	ReceiptRepository interface {
		CreateReceipt(ctx context.Context, receipt *entities.Receipt) error
		GetReceiptByID(ctx context.Context, id string, userID string) (*entities.Receipt, error)
		GetReceipts(ctx context.Context, userID string) ([]*entities.Receipt, error)
		UpdateReceiptFields(ctx context.Context, id string, userID string, fields map[string]interface{}) (*entities.Receipt, error)
		DeleteReceipt(ctx context.Context, id string, userID string) error
	}

	receiptRepository struct {
		db *gorm.DB
	}
)

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) CreateReceipt(ctx context.Context, receipt *entities.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// GetReceiptByID is scoped by owner: a receipt that exists under another
// account is indistinguishable from one that does not exist.
func (r *receiptRepository) GetReceiptByID(ctx context.Context, id string, userID string) (*entities.Receipt, error) {
	var receipt entities.Receipt
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) GetReceipts(ctx context.Context, userID string) ([]*entities.Receipt, error) {
	var receipts []*entities.Receipt
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// UpdateReceiptFields applies fields in a single conditional UPDATE
// scoped by (id, user_id), so a concurrent update and reprocess on the
// same row cannot interleave partial writes.
func (r *receiptRepository) UpdateReceiptFields(ctx context.Context, id string, userID string, fields map[string]interface{}) (*entities.Receipt, error) {
	result := r.db.WithContext(ctx).Model(&entities.Receipt{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.GetReceiptByID(ctx, id, userID)
}

func (r *receiptRepository) DeleteReceipt(ctx context.Context, id string, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.Receipt{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
