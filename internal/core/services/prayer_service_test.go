package services

import (
	"context"
	"testing"

	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/pagination"
	"congregation-api/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrayerRequests(t *testing.T) {
	db := testutil.TestDB(t)
	prayerRepo := repositories.NewPrayerRepository(db)
	svc := NewPrayerService(prayerRepo, NewContentGovernance(repositories.NewContentRepository(db), prayerRepo))
	ctx := context.Background()

	submitter := memberActor(testutil.CreateMember(t, db, "elizabeth"))
	other := memberActor(testutil.CreateMember(t, db, "zechariah"))
	admin := adminActor(testutil.CreateAdmin(t, db, "chaplain"))

	anonymous, err := svc.Create(ctx, submitter, &CreatePrayerInput{
		Content:      "For the new building",
		IsAnonymous:  true,
		PrayerPoints: []string{" provision ", "", "unity"},
	})
	require.NoError(t, err)
	assert.Nil(t, anonymous.SubmitterID)
	assert.Equal(t, []string{"provision", "unity"}, anonymous.PrayerPoints)

	named, err := svc.Create(ctx, submitter, &CreatePrayerInput{Content: "Safe travels"})
	require.NoError(t, err)
	require.NotNil(t, named.SubmitterID)

	_, err = svc.Create(ctx, admin, &CreatePrayerInput{Content: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Create(ctx, submitter, &CreatePrayerInput{Content: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.MarkAnswered(ctx, other, named.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	answered, err := svc.MarkAnswered(ctx, submitter, named.ID)
	require.NoError(t, err)
	assert.True(t, answered.Answered)

	_, err = svc.MarkAnswered(ctx, admin, anonymous.ID)
	require.NoError(t, err)

	_, err = svc.MarkAnswered(ctx, admin, 404)
	assert.ErrorIs(t, err, ErrPrayerNotFound)

	open := false
	list, err := svc.List(ctx, &open, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Empty(t, list.Prayers)

	list, err = svc.List(ctx, nil, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Len(t, list.Prayers, 2)
}
