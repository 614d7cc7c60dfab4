package repositories

import (
	"context"
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/core/domain"

	"gorm.io/gorm"
)

// donationRepository implements DonationRepository interface
type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

// Create creates a new donation
func (r *donationRepository) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Omit("Donor").Create(donation).Error
}

// GetByID gets a donation with its donor
func (r *donationRepository) GetByID(ctx context.Context, id uint) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.WithContext(ctx).
		Preload("Donor").
		First(&donation, id).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// List lists donations, optionally filtered by status
func (r *donationRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.Donation, int64, error) {
	var donations []*models.Donation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Donation{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Donor").
		Order("donation_date DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&donations).Error
	return donations, total, err
}

// ListByDonor lists donations made by a member
func (r *donationRepository) ListByDonor(ctx context.Context, donorID uint, offset, limit int) ([]*models.Donation, int64, error) {
	var donations []*models.Donation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Donation{}).Where("donor_id = ?", donorID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("donation_date DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&donations).Error
	return donations, total, err
}

// UpdateStatus sets the donation status
func (r *donationRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ?", id).
		Update("status", status)
	return requireRow(ctx, r.db, &models.Donation{}, id, result)
}

// MarkReceiptSent is a compare-and-swap on receipt_sent
func (r *donationRepository) MarkReceiptSent(ctx context.Context, id uint, receipt string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ? AND receipt_sent = ?", id, false).
		Updates(map[string]interface{}{
			"receipt_sent": true,
			"receipt":      receipt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Donation{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return domain.ErrReceiptAlreadySent
}

// ListUnsentReceipts lists donations in a status whose receipt has not been sent
func (r *donationRepository) ListUnsentReceipts(ctx context.Context, status string, since time.Time, limit int) ([]*models.Donation, error) {
	var donations []*models.Donation
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("status = ?", status).
		Where("receipt_sent = ?", false).
		Where("donation_date >= ?", since).
		Order("donation_date ASC, id ASC").
		Limit(limit).
		Find(&donations).Error
	return donations, err
}
