package repository

import (
	"context"
	"errors"

	"github.com/caden/captionator/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// LocationRepository handles persistence of researched locations.
type LocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new LocationRepository bound to db.
func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// FindByAddress retrieves the location cached for an exact address string.
// Returns (nil, nil) when no row exists.
func (r *LocationRepository) FindByAddress(ctx context.Context, address string) (*domain.Location, error) {
	var loc domain.Location
	err := r.db.WithContext(ctx).First(&loc, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// Create inserts a new location row. A duplicate address surfaces as an
// error so callers can treat the race as "someone else already cached it"
// and re-read.
func (r *LocationRepository) Create(ctx context.Context, loc *domain.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

// Upsert creates or updates a location keyed by address.
func (r *LocationRepository) Upsert(ctx context.Context, loc *domain.Location) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"city", "state", "is_rural", "research",
			"chamber_info", "government_info", "updated_at",
		}),
	}).Create(loc).Error
}

// ListResearched retrieves research-complete locations ordered by city
// then state ascending.
func (r *LocationRepository) ListResearched(ctx context.Context) ([]domain.Location, error) {
	var locations []domain.Location
	if err := r.db.WithContext(ctx).
		Where("research IS NOT NULL AND research != ''").
		Order("city ASC, state ASC").
		Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// GetByID retrieves a location by its ID.
func (r *LocationRepository) GetByID(ctx context.Context, id uint) (*domain.Location, error) {
	var loc domain.Location
	if err := r.db.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// Delete removes a location by ID. Returns ErrNotFound when absent.
func (r *LocationRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Location{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
