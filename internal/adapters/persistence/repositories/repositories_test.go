package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMemberRejectsUnhashedPassword(t *testing.T) {
	db := testutil.TestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	member := &models.Member{Username: "judas", Email: "judas@example.org", PhoneNumber: "+15550000030", PasswordHash: "silver"}
	assert.ErrorIs(t, repo.Create(ctx, member), models.ErrUnhashedPassword)

	stored := testutil.CreateMember(t, db, "matthias")
	stored.PasswordHash = "plain"
	assert.ErrorIs(t, repo.Update(ctx, stored), models.ErrUnhashedPassword)

	reloaded, err := repo.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureHash(t), reloaded.PasswordHash)
}

func TestAdminRejectsUnhashedPassword(t *testing.T) {
	db := testutil.TestDB(t)
	repo := NewAdminRepository(db)

	admin := &models.Admin{Username: "root", Email: "root@example.org", PhoneNumber: "+15550000031", PasswordHash: ""}
	assert.ErrorIs(t, repo.Create(context.Background(), admin), models.ErrUnhashedPassword)
}

func TestMemberExists(t *testing.T) {
	db := testutil.TestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	member := testutil.CreateMember(t, db, "stephen")

	exists, err := repo.ExistsByUsername(ctx, "stephen")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, member.Email)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByPhone(ctx, "+10000000000")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.GetByUsername(ctx, "philip")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAddVoteIsAtomic(t *testing.T) {
	db := testutil.TestDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	author := testutil.CreateMember(t, db, "andrew")
	post := &models.ForumPost{Title: "Fish fry", Content: "Friday", Category: "events", AuthorID: author.ID}
	require.NoError(t, repo.CreatePost(ctx, post))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// each goroutine holds its own stale copy
			stale := &models.ForumPost{ID: post.ID}
			assert.NoError(t, repo.AddVote(ctx, stale, VoteUp))
		}()
	}
	wg.Wait()

	stored, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Upvotes)
	assert.Equal(t, 0, stored.Downvotes)

	assert.Error(t, repo.AddVote(ctx, post, "title"))
	assert.ErrorIs(t, repo.AddVote(ctx, &models.Comment{ID: 404}, VoteDown), gorm.ErrRecordNotFound)
}

func TestMarkDeleted(t *testing.T) {
	db := testutil.TestDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	author := testutil.CreateMember(t, db, "peter")
	post := &models.ForumPost{Title: "Nets", Content: "Mending", Category: "general", AuthorID: author.ID}
	require.NoError(t, repo.CreatePost(ctx, post))
	comment := &models.Comment{Content: "Bring twine", AuthorID: author.ID, PostID: post.ID}
	require.NoError(t, repo.CreateComment(ctx, comment))

	require.NoError(t, repo.MarkDeleted(ctx, comment))
	require.NoError(t, repo.MarkDeleted(ctx, comment))

	comments, total, err := repo.ListComments(ctx, post.ID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Zero(t, total)

	assert.ErrorIs(t, repo.MarkDeleted(ctx, &models.ForumPost{ID: 404}), gorm.ErrRecordNotFound)
}

func TestListPostsByCategory(t *testing.T) {
	db := testutil.TestDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	author := testutil.CreateMember(t, db, "john")
	for _, category := range []string{"events", "events", "general"} {
		require.NoError(t, repo.CreatePost(ctx, &models.ForumPost{
			Title: "t", Content: "c", Category: category, AuthorID: author.ID, IsApproved: true,
		}))
	}

	posts, total, err := repo.ListPosts(ctx, "events", 0, 1)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, int64(2), total)
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "john", posts[0].Author.Username)
}

func TestRefreshTokenCleanup(t *testing.T) {
	db := testutil.TestDB(t)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	live := &models.RefreshToken{PrincipalKind: "MEMBER", PrincipalID: 1, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)}
	expired := &models.RefreshToken{PrincipalKind: "MEMBER", PrincipalID: 1, TokenHash: "expired", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, expired))

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := repo.CountActiveByPrincipal(ctx, "MEMBER", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.RevokeAllByPrincipal(ctx, "MEMBER", 1))
	token, err := repo.GetByTokenHash(ctx, "live")
	require.NoError(t, err)
	assert.True(t, token.IsRevoked())
}
