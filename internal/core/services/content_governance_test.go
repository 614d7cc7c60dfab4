package services

import (
	"context"
	"testing"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGovernance(db *gorm.DB) (*ContentGovernance, repositories.ContentRepository, repositories.PrayerRepository) {
	contentRepo := repositories.NewContentRepository(db)
	prayerRepo := repositories.NewPrayerRepository(db)
	return NewContentGovernance(contentRepo, prayerRepo), contentRepo, prayerRepo
}

func createPost(t *testing.T, repo repositories.ContentRepository, author *models.Member) *models.ForumPost {
	t.Helper()
	post := &models.ForumPost{Title: "Sunday potluck", Content: "Who brings dessert?", Category: "general", AuthorID: author.ID}
	require.NoError(t, repo.CreatePost(context.Background(), post))
	return post
}

func TestVotesArePersisted(t *testing.T) {
	db := testutil.TestDB(t)
	gov, contentRepo, _ := newGovernance(db)
	ctx := context.Background()

	author := testutil.CreateMember(t, db, "mary")
	post := createPost(t, contentRepo, author)

	updated, err := gov.Upvote(ctx, post)
	require.NoError(t, err)
	up, down := updated.Votes()
	assert.Equal(t, 1, up)
	assert.Equal(t, 0, down)

	_, err = gov.Downvote(ctx, post)
	require.NoError(t, err)
	_, err = gov.Downvote(ctx, post)
	require.NoError(t, err)

	stored, err := contentRepo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Upvotes)
	assert.Equal(t, 2, stored.Downvotes)
	assert.Equal(t, 2, post.Downvotes)
}

func TestCommentVotes(t *testing.T) {
	db := testutil.TestDB(t)
	gov, contentRepo, _ := newGovernance(db)
	ctx := context.Background()

	author := testutil.CreateMember(t, db, "martha")
	post := createPost(t, contentRepo, author)
	comment := &models.Comment{Content: "Pie!", AuthorID: author.ID, PostID: post.ID}
	require.NoError(t, contentRepo.CreateComment(ctx, comment))

	_, err := gov.Upvote(ctx, comment)
	require.NoError(t, err)

	stored, err := contentRepo.GetCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Upvotes)

	storedPost, err := contentRepo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, storedPost.Upvotes)
}

func TestVoteFailureLeavesEntityUnchanged(t *testing.T) {
	gov := NewContentGovernance(failingContentRepo{}, failingPrayerRepo{})
	post := &models.ForumPost{ID: 9, AuthorID: 1, Upvotes: 4, Downvotes: 2}

	_, err := gov.Upvote(context.Background(), post)
	var persistErr *domain.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.ErrorIs(t, err, errStorageDown)

	_, err = gov.Downvote(context.Background(), post)
	require.Error(t, err)

	assert.Equal(t, 4, post.Upvotes)
	assert.Equal(t, 2, post.Downvotes)
}

func TestVoteMissingContent(t *testing.T) {
	db := testutil.TestDB(t)
	gov, _, _ := newGovernance(db)

	_, err := gov.Upvote(context.Background(), &models.ForumPost{ID: 404})
	var persistErr *domain.PersistenceError
	assert.ErrorAs(t, err, &persistErr)
}

func TestIsAuthorizedToEdit(t *testing.T) {
	post := &models.ForumPost{ID: 1, AuthorID: 10}

	author := &domain.Actor{Kind: domain.PrincipalMember, ID: 10}
	other := &domain.Actor{Kind: domain.PrincipalMember, ID: 11}
	moderator := &domain.Actor{Kind: domain.PrincipalMember, ID: 12, Role: domain.RoleModerator}
	admin := &domain.Actor{Kind: domain.PrincipalAdmin, ID: 10}

	assert.True(t, IsAuthorizedToEdit(post, author, false))
	assert.False(t, IsAuthorizedToEdit(post, other, false))
	assert.True(t, IsAuthorizedToEdit(post, moderator, moderator.IsPrivileged()))
	assert.True(t, IsAuthorizedToEdit(post, other, true))
	assert.False(t, IsAuthorizedToEdit(post, nil, false))
	assert.True(t, IsAuthorizedToEdit(post, nil, true))

	// an admin sharing the author's numeric id is not the author
	assert.False(t, IsAuthorizedToEdit(post, admin, false))
	assert.True(t, IsAuthorizedToEdit(post, admin, admin.IsPrivileged()))
}

func TestSoftDelete(t *testing.T) {
	db := testutil.TestDB(t)
	gov, contentRepo, _ := newGovernance(db)
	ctx := context.Background()

	author := testutil.CreateMember(t, db, "lydia")
	post := createPost(t, contentRepo, author)

	deleted, err := gov.SoftDelete(ctx, post)
	require.NoError(t, err)
	assert.True(t, deleted.IsSoftDeleted())

	_, err = gov.SoftDelete(ctx, post)
	require.NoError(t, err)

	posts, total, err := contentRepo.ListPosts(ctx, "", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Zero(t, total)

	stored, err := contentRepo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
}

func TestSoftDeleteAlreadyDeletedSkipsStorage(t *testing.T) {
	gov := NewContentGovernance(failingContentRepo{}, failingPrayerRepo{})

	post := &models.ForumPost{ID: 3, IsDeleted: true}
	_, err := gov.SoftDelete(context.Background(), post)
	assert.NoError(t, err)

	live := &models.ForumPost{ID: 4}
	_, err = gov.SoftDelete(context.Background(), live)
	assert.Error(t, err)
	assert.False(t, live.IsDeleted)
}

func TestMarkAnswered(t *testing.T) {
	db := testutil.TestDB(t)
	gov, _, prayerRepo := newGovernance(db)
	ctx := context.Background()

	submitter := testutil.CreateMember(t, db, "hannah")
	prayer := &models.PrayerRequest{Content: "Healing for my mother", SubmitterID: submitter.ID}
	require.NoError(t, prayerRepo.Create(ctx, prayer))

	answered, err := gov.MarkAnswered(ctx, prayer)
	require.NoError(t, err)
	assert.True(t, answered.Answered)

	_, err = gov.MarkAnswered(ctx, prayer)
	require.NoError(t, err)

	stored, err := prayerRepo.GetByID(ctx, prayer.ID)
	require.NoError(t, err)
	assert.True(t, stored.Answered)
}

func TestMarkAnsweredFailure(t *testing.T) {
	gov := NewContentGovernance(failingContentRepo{}, failingPrayerRepo{})
	prayer := &models.PrayerRequest{ID: 5}

	_, err := gov.MarkAnswered(context.Background(), prayer)
	var persistErr *domain.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.False(t, prayer.Answered)
}
