package repositories

import (
	"context"

	"congregation-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// prayerRepository implements PrayerRepository interface
type prayerRepository struct {
	db *gorm.DB
}

// NewPrayerRepository creates a new prayer request repository
func NewPrayerRepository(db *gorm.DB) PrayerRepository {
	return &prayerRepository{db: db}
}

// Create creates a new prayer request
func (r *prayerRepository) Create(ctx context.Context, prayer *models.PrayerRequest) error {
	return r.db.WithContext(ctx).Create(prayer).Error
}

// GetByID gets a prayer request by ID
func (r *prayerRepository) GetByID(ctx context.Context, id uint) (*models.PrayerRequest, error) {
	var prayer models.PrayerRequest
	if err := r.db.WithContext(ctx).First(&prayer, id).Error; err != nil {
		return nil, err
	}
	return &prayer, nil
}

// List lists prayer requests, optionally filtered by answered state
func (r *prayerRepository) List(ctx context.Context, answered *bool, offset, limit int) ([]*models.PrayerRequest, int64, error) {
	var prayers []*models.PrayerRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PrayerRequest{})
	if answered != nil {
		query = query.Where("answered = ?", *answered)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&prayers).Error
	return prayers, total, err
}

// MarkAnswered sets answered = true. Already-answered requests are left as they are.
func (r *prayerRepository) MarkAnswered(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.PrayerRequest{}).
		Where("id = ?", id).
		Update("answered", true)
	return requireRow(ctx, r.db, &models.PrayerRequest{}, id, result)
}
