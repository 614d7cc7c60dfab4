package services

import (
	"context"
	"testing"
	"time"

	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type phoneFixture struct {
	svc      *PhoneVerificationService
	repo     repositories.AdminRepository
	notifier *recordingNotifier
	clock    time.Time
}

func newPhoneFixture(db *gorm.DB) *phoneFixture {
	f := &phoneFixture{
		repo:     repositories.NewAdminRepository(db),
		notifier: &recordingNotifier{},
		clock:    time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewPhoneVerificationService(f.repo, NewCredentialStore(), f.notifier)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *phoneFixture) pendingCode(t *testing.T, adminID uint) string {
	t.Helper()
	admin, err := f.repo.GetByID(context.Background(), adminID)
	require.NoError(t, err)
	require.NotNil(t, admin.PhoneVerificationCode)
	return *admin.PhoneVerificationCode
}

func TestPhoneVerificationFlow(t *testing.T) {
	db := testutil.TestDB(t)
	f := newPhoneFixture(db)
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, db, "deacon")

	require.NoError(t, f.svc.RequestCode(ctx, admin.ID))
	require.Equal(t, 1, f.notifier.count())
	assert.Equal(t, admin.Email, f.notifier.sent[0].Address)

	code := f.pendingCode(t, admin.ID)
	assert.Len(t, code, phoneCodeLength)
	assert.Contains(t, f.notifier.sent[0].Body, code)

	_, err := f.svc.VerifyCode(ctx, admin.ID, "not-it")
	assert.ErrorIs(t, err, ErrInvalidCode)

	verified, err := f.svc.VerifyCode(ctx, admin.ID, " "+code+" ")
	require.NoError(t, err)
	assert.True(t, verified.IsPhoneVerified)
	assert.Nil(t, verified.PhoneVerificationCode)

	err = f.svc.RequestCode(ctx, admin.ID)
	assert.ErrorIs(t, err, ErrPhoneAlreadyVerified)
}

func TestPhoneVerificationLimits(t *testing.T) {
	db := testutil.TestDB(t)
	f := newPhoneFixture(db)
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, db, "elder")

	_, err := f.svc.VerifyCode(ctx, admin.ID, "123456")
	assert.ErrorIs(t, err, ErrNoCodeRequested)

	require.NoError(t, f.svc.RequestCode(ctx, admin.ID))
	assert.ErrorIs(t, f.svc.RequestCode(ctx, admin.ID), ErrCodeRequestedTooSoon)

	for i := 0; i < phoneCodeMaxAttempts; i++ {
		_, err = f.svc.VerifyCode(ctx, admin.ID, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCode)
	}
	code := f.pendingCode(t, admin.ID)
	_, err = f.svc.VerifyCode(ctx, admin.ID, code)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	f.clock = f.clock.Add(2 * time.Minute)
	require.NoError(t, f.svc.RequestCode(ctx, admin.ID))

	f.clock = f.clock.Add(phoneCodeTTL + time.Second)
	code = f.pendingCode(t, admin.ID)
	_, err = f.svc.VerifyCode(ctx, admin.ID, code)
	assert.ErrorIs(t, err, ErrCodeExpired)

	cleared, err := f.svc.ClearExpiredCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	_, err = f.svc.VerifyCode(ctx, admin.ID, code)
	assert.ErrorIs(t, err, ErrNoCodeRequested)

	_, err = f.svc.VerifyCode(ctx, 404, code)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestGenerateSecureCode(t *testing.T) {
	code, err := generateSecureCode(6)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]{6}$`, code)
}
