package repositories

import (
	"context"
	"time"

	"congregation-api/internal/adapters/persistence/models"
)

// MemberRepository defines member repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByUsername(ctx context.Context, username string) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	GetByPhone(ctx context.Context, phone string) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

// AdminRepository defines administrator repository interface
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uint) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	Update(ctx context.Context, admin *models.Admin) error
	Count(ctx context.Context) (int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ClearExpiredPhoneCodes(ctx context.Context, now time.Time) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByPrincipal(ctx context.Context, kind string, principalID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
	CountActiveByPrincipal(ctx context.Context, kind string, principalID uint) (int64, error)
}

// ContentRepository defines forum post and comment persistence
type ContentRepository interface {
	CreatePost(ctx context.Context, post *models.ForumPost) error
	GetPostByID(ctx context.Context, id uint) (*models.ForumPost, error)
	ListPosts(ctx context.Context, category string, offset, limit int) ([]*models.ForumPost, int64, error)
	UpdatePost(ctx context.Context, post *models.ForumPost) error

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	ListComments(ctx context.Context, postID uint, offset, limit int) ([]*models.Comment, int64, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error

	// AddVote atomically increments the "upvotes" or "downvotes" column
	AddVote(ctx context.Context, content models.ThreadedContent, column string) error
	MarkDeleted(ctx context.Context, content models.ThreadedContent) error
}

// PrayerRepository defines prayer request persistence
type PrayerRepository interface {
	Create(ctx context.Context, prayer *models.PrayerRequest) error
	GetByID(ctx context.Context, id uint) (*models.PrayerRequest, error)
	List(ctx context.Context, answered *bool, offset, limit int) ([]*models.PrayerRequest, int64, error)
	MarkAnswered(ctx context.Context, id uint) error
}

// DonationRepository defines donation persistence
type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, id uint) (*models.Donation, error)
	List(ctx context.Context, status string, offset, limit int) ([]*models.Donation, int64, error)
	ListByDonor(ctx context.Context, donorID uint, offset, limit int) ([]*models.Donation, int64, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	// MarkReceiptSent stores the receipt only if it has not been marked sent yet.
	// Returns domain.ErrReceiptAlreadySent when another writer got there first.
	MarkReceiptSent(ctx context.Context, id uint, receipt string) error
	ListUnsentReceipts(ctx context.Context, status string, since time.Time, limit int) ([]*models.Donation, error)
}
