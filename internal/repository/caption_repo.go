package repository

import (
	"context"

	"github.com/caden/captionator/internal/domain"
	"gorm.io/gorm"
)

// CaptionRepository handles persistence of saved captions.
type CaptionRepository struct {
	db *gorm.DB
}

// NewCaptionRepository creates a new CaptionRepository bound to db.
func NewCaptionRepository(db *gorm.DB) *CaptionRepository {
	return &CaptionRepository{db: db}
}

// Create inserts a new caption record.
func (r *CaptionRepository) Create(ctx context.Context, caption *domain.Caption) error {
	return r.db.WithContext(ctx).Create(caption).Error
}

// List retrieves saved captions newest-first with pagination.
func (r *CaptionRepository) List(ctx context.Context, offset, limit int) ([]domain.Caption, error) {
	var captions []domain.Caption
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&captions).Error; err != nil {
		return nil, err
	}
	return captions, nil
}

// Count returns the total number of saved captions.
func (r *CaptionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Caption{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
