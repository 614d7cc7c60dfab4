package repositories

import (
	"context"

	"congregation-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new member
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID gets a member by ID
func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	return r.findOne(ctx, "id = ?", id)
}

// GetByUsername gets a member by username
func (r *memberRepository) GetByUsername(ctx context.Context, username string) (*models.Member, error) {
	return r.findOne(ctx, "username = ?", username)
}

// GetByEmail gets a member by email
func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	return r.findOne(ctx, "email = ?", email)
}

// GetByPhone gets a member by phone number
func (r *memberRepository) GetByPhone(ctx context.Context, phone string) (*models.Member, error) {
	return r.findOne(ctx, "phone_number = ?", phone)
}

func (r *memberRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where(query, arg).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Update saves all member fields
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// List lists members with pagination
func (r *memberRepository) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Member{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// ExistsByUsername checks if username exists
func (r *memberRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

// ExistsByEmail checks if email exists
func (r *memberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

// ExistsByPhone checks if phone number exists
func (r *memberRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, "phone_number = ?", phone)
}

func (r *memberRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).Where(query, arg).Count(&count).Error
	return count > 0, err
}
