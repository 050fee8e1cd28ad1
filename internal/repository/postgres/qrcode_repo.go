package postgres

import (
	"context"
	"errors"

	"github.com/dom/qr-code-website/internal/domain"
	"gorm.io/gorm"
)

type qrCodeRepository struct {
	db *gorm.DB
}

func NewQRCodeRepository(db *gorm.DB) *qrCodeRepository {
	return &qrCodeRepository{db: db}
}

func (r *qrCodeRepository) Create(ctx context.Context, code *domain.QRCode) error {
	err := r.db.WithContext(ctx).Create(code).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		// owner no longer exists
		return domain.ErrNotFound
	}
	return err
}

func (r *qrCodeRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.QRCode, error) {
	codes := make([]*domain.QRCode, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// DeleteByOwner removes the row only when both id and owner match, in a
// single statement. A false result does not say which condition failed.
func (r *qrCodeRepository) DeleteByOwner(ctx context.Context, userID, id int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.QRCode{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
