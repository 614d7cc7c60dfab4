package repositories

import (
	"context"
	"fmt"

	"congregation-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// Vote columns accepted by AddVote
const (
	VoteUp   = "upvotes"
	VoteDown = "downvotes"
)

// contentRepository implements ContentRepository interface
type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new forum content repository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

// CreatePost creates a new forum post
func (r *contentRepository) CreatePost(ctx context.Context, post *models.ForumPost) error {
	return r.db.WithContext(ctx).Omit("Author").Create(post).Error
}

// GetPostByID gets a post with its author, including soft-deleted posts
func (r *contentRepository) GetPostByID(ctx context.Context, id uint) (*models.ForumPost, error) {
	var post models.ForumPost
	err := r.db.WithContext(ctx).
		Preload("Author").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts lists approved, non-deleted posts, newest first
func (r *contentRepository) ListPosts(ctx context.Context, category string, offset, limit int) ([]*models.ForumPost, int64, error) {
	var posts []*models.ForumPost
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.ForumPost{}).
		Where("is_deleted = ?", false).
		Where("is_approved = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Author").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

// UpdatePost saves the editable fields of a post.
// Vote counters and the deleted flag are never written here.
func (r *contentRepository) UpdatePost(ctx context.Context, post *models.ForumPost) error {
	return r.db.WithContext(ctx).
		Model(post).
		Select("title", "content", "category").
		Updates(post).Error
}

// CreateComment creates a new comment
func (r *contentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("Author").Create(comment).Error
}

// GetCommentByID gets a comment with its author, including soft-deleted comments
func (r *contentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments lists non-deleted comments of a post, oldest first
func (r *contentRepository) ListComments(ctx context.Context, postID uint, offset, limit int) ([]*models.Comment, int64, error) {
	var comments []*models.Comment
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Where("is_deleted = ?", false)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Author").
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error
	return comments, total, err
}

// UpdateComment saves the editable fields of a comment
func (r *contentRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).
		Model(comment).
		Select("content").
		Updates(comment).Error
}

// AddVote increments a vote column in a single UPDATE so concurrent votes are not lost
func (r *contentRepository) AddVote(ctx context.Context, content models.ThreadedContent, column string) error {
	if column != VoteUp && column != VoteDown {
		return fmt.Errorf("unknown vote column %q", column)
	}

	result := r.db.WithContext(ctx).
		Model(content).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkDeleted sets is_deleted on a post or comment
func (r *contentRepository) MarkDeleted(ctx context.Context, content models.ThreadedContent) error {
	result := r.db.WithContext(ctx).
		Model(content).
		UpdateColumn("is_deleted", true)
	return requireRow(ctx, r.db, content, content.ContentID(), result)
}
