package services

import (
	"context"
	"errors"
	"strings"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/pagination"

	"gorm.io/gorm"
)

// Forum errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrParentMismatch  = errors.New("parent comment belongs to another post")
)

const defaultPostCategory = "general"

// ForumService handles forum posts and comments on behalf of an actor
type ForumService struct {
	contentRepo repositories.ContentRepository
	governance  *ContentGovernance
}

// NewForumService creates a new forum service
func NewForumService(contentRepo repositories.ContentRepository, governance *ContentGovernance) *ForumService {
	return &ForumService{
		contentRepo: contentRepo,
		governance:  governance,
	}
}

// CreatePostInput represents a new forum post
type CreatePostInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	ParentID *uint  `json:"parent_id"`
}

// UpdatePostInput represents editable post fields
type UpdatePostInput struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

// CreateCommentInput represents a new comment
type CreateCommentInput struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCommentInput represents editable comment fields
type UpdateCommentInput struct {
	Content string `json:"content"`
}

// ListPostsOutput represents a page of posts
type ListPostsOutput struct {
	Posts      []*models.ForumPost `json:"posts"`
	Pagination *pagination.Meta    `json:"pagination"`
}

// ListCommentsOutput represents a page of comments
type ListCommentsOutput struct {
	Comments   []*models.Comment `json:"comments"`
	Pagination *pagination.Meta  `json:"pagination"`
}

// CreatePost creates a post authored by the acting member
func (s *ForumService) CreatePost(ctx context.Context, actor *domain.Actor, input *CreatePostInput) (*models.ForumPost, error) {
	if actor == nil || actor.Kind != domain.PrincipalMember {
		return nil, domain.ErrForbidden
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, domain.ErrInvalidInput
	}

	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" {
		category = defaultPostCategory
	}

	if input.ParentID != nil {
		if _, err := s.getLivePost(ctx, *input.ParentID); err != nil {
			return nil, err
		}
	}

	post := &models.ForumPost{
		Title:      title,
		Content:    content,
		Category:   category,
		AuthorID:   actor.ID,
		ParentID:   input.ParentID,
		IsApproved: true,
	}
	if err := s.contentRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts lists visible posts
func (s *ForumService) ListPosts(ctx context.Context, category string, params *pagination.Params) (*ListPostsOutput, error) {
	posts, total, err := s.contentRepo.ListPosts(ctx, strings.ToLower(strings.TrimSpace(category)), params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}
	return &ListPostsOutput{
		Posts:      posts,
		Pagination: pagination.GetMeta(params, total),
	}, nil
}

// GetPost gets a visible post
func (s *ForumService) GetPost(ctx context.Context, id uint) (*models.ForumPost, error) {
	return s.getLivePost(ctx, id)
}

// UpdatePost edits a post if the actor is its author or privileged
func (s *ForumService) UpdatePost(ctx context.Context, actor *domain.Actor, id uint, input *UpdatePostInput) (*models.ForumPost, error) {
	post, err := s.getLivePost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.governance.IsAuthorizedToEdit(post, actor, actor.IsPrivileged()) {
		return nil, domain.ErrForbidden
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, domain.ErrInvalidInput
		}
		post.Title = title
	}
	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" {
			return nil, domain.ErrInvalidInput
		}
		post.Content = content
	}
	if input.Category != nil {
		if category := strings.ToLower(strings.TrimSpace(*input.Category)); category != "" {
			post.Category = category
		}
	}

	if err := s.contentRepo.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost soft-deletes a post if the actor is its author or privileged
func (s *ForumService) DeletePost(ctx context.Context, actor *domain.Actor, id uint) error {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return err
	}
	if !s.governance.IsAuthorizedToEdit(post, actor, actor.IsPrivileged()) {
		return domain.ErrForbidden
	}

	_, err = s.governance.SoftDelete(ctx, post)
	return err
}

// VotePost adds one vote to a visible post
func (s *ForumService) VotePost(ctx context.Context, id uint, up bool) (*models.ForumPost, error) {
	post, err := s.getLivePost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.vote(ctx, post, up); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment adds a comment to a visible post
func (s *ForumService) CreateComment(ctx context.Context, actor *domain.Actor, postID uint, input *CreateCommentInput) (*models.Comment, error) {
	if actor == nil || actor.Kind != domain.PrincipalMember {
		return nil, domain.ErrForbidden
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.getLivePost(ctx, postID); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		parent, err := s.getLiveComment(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, ErrParentMismatch
		}
	}

	comment := &models.Comment{
		Content:  content,
		AuthorID: actor.ID,
		PostID:   postID,
		ParentID: input.ParentID,
	}
	if err := s.contentRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments lists visible comments of a visible post
func (s *ForumService) ListComments(ctx context.Context, postID uint, params *pagination.Params) (*ListCommentsOutput, error) {
	if _, err := s.getLivePost(ctx, postID); err != nil {
		return nil, err
	}

	comments, total, err := s.contentRepo.ListComments(ctx, postID, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}
	return &ListCommentsOutput{
		Comments:   comments,
		Pagination: pagination.GetMeta(params, total),
	}, nil
}

// UpdateComment edits a comment if the actor is its author or privileged
func (s *ForumService) UpdateComment(ctx context.Context, actor *domain.Actor, id uint, input *UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.getLiveComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.governance.IsAuthorizedToEdit(comment, actor, actor.IsPrivileged()) {
		return nil, domain.ErrForbidden
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, domain.ErrInvalidInput
	}
	comment.Content = content

	if err := s.contentRepo.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment soft-deletes a comment if the actor is its author or privileged
func (s *ForumService) DeleteComment(ctx context.Context, actor *domain.Actor, id uint) error {
	comment, err := s.getComment(ctx, id)
	if err != nil {
		return err
	}
	if !s.governance.IsAuthorizedToEdit(comment, actor, actor.IsPrivileged()) {
		return domain.ErrForbidden
	}

	_, err = s.governance.SoftDelete(ctx, comment)
	return err
}

// VoteComment adds one vote to a visible comment
func (s *ForumService) VoteComment(ctx context.Context, id uint, up bool) (*models.Comment, error) {
	comment, err := s.getLiveComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.vote(ctx, comment, up); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ForumService) vote(ctx context.Context, content models.ThreadedContent, up bool) error {
	var err error
	if up {
		_, err = s.governance.Upvote(ctx, content)
	} else {
		_, err = s.governance.Downvote(ctx, content)
	}
	return err
}

func (s *ForumService) getPost(ctx context.Context, id uint) (*models.ForumPost, error) {
	post, err := s.contentRepo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// getLivePost hides soft-deleted posts
func (s *ForumService) getLivePost(ctx context.Context, id uint) (*models.ForumPost, error) {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.IsDeleted {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *ForumService) getComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.contentRepo.GetCommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *ForumService) getLiveComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.getComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}
