package handlers

import (
	"errors"

	"congregation-api/internal/core/services"
	"congregation-api/internal/pkg/pagination"
	"congregation-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ForumHandler handles forum post and comment endpoints
type ForumHandler struct {
	forumService *services.ForumService
}

// NewForumHandler creates a new forum handler
func NewForumHandler(forumService *services.ForumService) *ForumHandler {
	return &ForumHandler{
		forumService: forumService,
	}
}

// ListPosts handles listing posts
// @Summary List forum posts
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /forum/posts [get]
func (h *ForumHandler) ListPosts(c *fiber.Ctx) error {
	result, err := h.forumService.ListPosts(c.Context(), c.Query("category"), pagination.GetParams(c))
	if err != nil {
		return domainError(c, err, "Failed to list posts")
	}
	return response.Paginated(c, "Posts retrieved successfully", result.Posts, result.Pagination)
}

// CreatePost handles creating a post
// @Summary Create forum post
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePostInput true "Post"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /forum/posts [post]
func (h *ForumHandler) CreatePost(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreatePostInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	post, err := h.forumService.CreatePost(c.Context(), actor, &input)
	if err != nil {
		return h.forumError(c, err, "Failed to create post")
	}
	return response.Created(c, "Post created successfully", post)
}

// GetPost handles getting a post
// @Summary Get forum post
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /forum/posts/{id} [get]
func (h *ForumHandler) GetPost(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid post ID")
	}

	post, err := h.forumService.GetPost(c.Context(), id)
	if err != nil {
		return h.forumError(c, err, "Failed to get post")
	}
	return response.Success(c, "Post retrieved successfully", post)
}

// UpdatePost handles editing a post
// @Summary Edit forum post
// @Description Authors and moderators may edit a post
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param body body services.UpdatePostInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /forum/posts/{id} [put]
func (h *ForumHandler) UpdatePost(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid post ID")
	}

	var input services.UpdatePostInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	post, err := h.forumService.UpdatePost(c.Context(), actor, id, &input)
	if err != nil {
		return h.forumError(c, err, "Failed to update post")
	}
	return response.Success(c, "Post updated successfully", post)
}

// DeletePost handles soft-deleting a post
// @Summary Delete forum post
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /forum/posts/{id} [delete]
func (h *ForumHandler) DeletePost(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid post ID")
	}

	if err := h.forumService.DeletePost(c.Context(), actor, id); err != nil {
		return h.forumError(c, err, "Failed to delete post")
	}
	return response.Success(c, "Post deleted successfully", nil)
}

// UpvotePost handles upvoting a post
// @Summary Upvote forum post
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Response
// @Router /forum/posts/{id}/upvote [post]
func (h *ForumHandler) UpvotePost(c *fiber.Ctx) error {
	return h.votePost(c, true)
}

// DownvotePost handles downvoting a post
// @Summary Downvote forum post
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Response
// @Router /forum/posts/{id}/downvote [post]
func (h *ForumHandler) DownvotePost(c *fiber.Ctx) error {
	return h.votePost(c, false)
}

func (h *ForumHandler) votePost(c *fiber.Ctx, up bool) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid post ID")
	}

	post, err := h.forumService.VotePost(c.Context(), id, up)
	if err != nil {
		return h.forumError(c, err, "Failed to record vote")
	}
	return response.Success(c, "Vote recorded", fiber.Map{
		"id":        post.ID,
		"upvotes":   post.Upvotes,
		"downvotes": post.Downvotes,
	})
}

// ListComments handles listing comments of a post
// @Summary List comments
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Response
// @Router /forum/posts/{id}/comments [get]
func (h *ForumHandler) ListComments(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid post ID")
	}

	result, err := h.forumService.ListComments(c.Context(), id, pagination.GetParams(c))
	if err != nil {
		return h.forumError(c, err, "Failed to list comments")
	}
	return response.Paginated(c, "Comments retrieved successfully", result.Comments, result.Pagination)
}

// CreateComment handles commenting on a post
// @Summary Create comment
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param body body services.CreateCommentInput true "Comment"
// @Success 201 {object} response.Response
// @Router /forum/posts/{id}/comments [post]
func (h *ForumHandler) CreateComment(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid post ID")
	}

	var input services.CreateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	comment, err := h.forumService.CreateComment(c.Context(), actor, id, &input)
	if err != nil {
		return h.forumError(c, err, "Failed to create comment")
	}
	return response.Created(c, "Comment created successfully", comment)
}

// UpdateComment handles editing a comment
// @Summary Edit comment
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param body body services.UpdateCommentInput true "Comment"
// @Success 200 {object} response.Response
// @Router /forum/comments/{id} [put]
func (h *ForumHandler) UpdateComment(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid comment ID")
	}

	var input services.UpdateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	comment, err := h.forumService.UpdateComment(c.Context(), actor, id, &input)
	if err != nil {
		return h.forumError(c, err, "Failed to update comment")
	}
	return response.Success(c, "Comment updated successfully", comment)
}

// DeleteComment handles soft-deleting a comment
// @Summary Delete comment
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} response.Response
// @Router /forum/comments/{id} [delete]
func (h *ForumHandler) DeleteComment(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid comment ID")
	}

	if err := h.forumService.DeleteComment(c.Context(), actor, id); err != nil {
		return h.forumError(c, err, "Failed to delete comment")
	}
	return response.Success(c, "Comment deleted successfully", nil)
}

// UpvoteComment handles upvoting a comment
// @Summary Upvote comment
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} response.Response
// @Router /forum/comments/{id}/upvote [post]
func (h *ForumHandler) UpvoteComment(c *fiber.Ctx) error {
	return h.voteComment(c, true)
}

// DownvoteComment handles downvoting a comment
// @Summary Downvote comment
// @Tags Forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} response.Response
// @Router /forum/comments/{id}/downvote [post]
func (h *ForumHandler) DownvoteComment(c *fiber.Ctx) error {
	return h.voteComment(c, false)
}

func (h *ForumHandler) voteComment(c *fiber.Ctx, up bool) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid comment ID")
	}

	comment, err := h.forumService.VoteComment(c.Context(), id, up)
	if err != nil {
		return h.forumError(c, err, "Failed to record vote")
	}
	return response.Success(c, "Vote recorded", fiber.Map{
		"id":        comment.ID,
		"upvotes":   comment.Upvotes,
		"downvotes": comment.Downvotes,
	})
}

func (h *ForumHandler) forumError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		return response.NotFound(c, "Post not found")
	case errors.Is(err, services.ErrCommentNotFound):
		return response.NotFound(c, "Comment not found")
	case errors.Is(err, services.ErrParentMismatch):
		return response.BadRequest(c, err.Error())
	default:
		return domainError(c, err, fallback)
	}
}
