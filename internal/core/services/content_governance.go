package services

import (
	"context"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/metrics"
)

// ContentGovernance applies votes, soft deletion and answered state to forum
// content and prayer requests, and decides who may edit content.
//
// Each mutating call writes to storage first and only then updates the entity
// it was given, so a failed write leaves the caller's copy untouched.
// Concurrent calls on one entity are not serialized here; vote increments are
// atomic in the database but the returned counters may lag other writers.
type ContentGovernance struct {
	contentRepo repositories.ContentRepository
	prayerRepo  repositories.PrayerRepository
}

// NewContentGovernance creates a new content governance component
func NewContentGovernance(contentRepo repositories.ContentRepository, prayerRepo repositories.PrayerRepository) *ContentGovernance {
	return &ContentGovernance{
		contentRepo: contentRepo,
		prayerRepo:  prayerRepo,
	}
}

// Upvote adds exactly one upvote
func (g *ContentGovernance) Upvote(ctx context.Context, content models.ThreadedContent) (models.ThreadedContent, error) {
	if err := g.contentRepo.AddVote(ctx, content, repositories.VoteUp); err != nil {
		return content, &domain.PersistenceError{Op: "upvote " + content.ContentKind(), Err: err}
	}
	content.Upvote()
	metrics.RecordVote(content.ContentKind(), "up")
	return content, nil
}

// Downvote adds exactly one downvote
func (g *ContentGovernance) Downvote(ctx context.Context, content models.ThreadedContent) (models.ThreadedContent, error) {
	if err := g.contentRepo.AddVote(ctx, content, repositories.VoteDown); err != nil {
		return content, &domain.PersistenceError{Op: "downvote " + content.ContentKind(), Err: err}
	}
	content.Downvote()
	metrics.RecordVote(content.ContentKind(), "down")
	return content, nil
}

// IsAuthorizedToEdit delegates to the package-level policy
func (g *ContentGovernance) IsAuthorizedToEdit(content models.ThreadedContent, actor *domain.Actor, privileged bool) bool {
	return IsAuthorizedToEdit(content, actor, privileged)
}

// IsAuthorizedToEdit reports whether actor may edit content: the author always
// may and anyone flagged privileged may.
func IsAuthorizedToEdit(content models.ThreadedContent, actor *domain.Actor, privileged bool) bool {
	if actor != nil && actor.IsMember(content.AuthorMemberID()) {
		return true
	}
	return privileged
}

// MarkAnswered sets answered on a prayer request; repeating it changes nothing
func (g *ContentGovernance) MarkAnswered(ctx context.Context, prayer *models.PrayerRequest) (*models.PrayerRequest, error) {
	if err := g.prayerRepo.MarkAnswered(ctx, prayer.ID); err != nil {
		return prayer, &domain.PersistenceError{Op: "mark prayer answered", Err: err}
	}
	prayer.MarkAnswered()
	return prayer, nil
}

// SoftDelete hides content from listings. Deleted content stays deleted and a
// second call does not touch storage.
func (g *ContentGovernance) SoftDelete(ctx context.Context, content models.ThreadedContent) (models.ThreadedContent, error) {
	if content.IsSoftDeleted() {
		return content, nil
	}
	if err := g.contentRepo.MarkDeleted(ctx, content); err != nil {
		return content, &domain.PersistenceError{Op: "soft delete " + content.ContentKind(), Err: err}
	}
	content.SoftDelete()
	return content, nil
}
