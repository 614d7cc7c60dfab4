package services

import (
	"context"
	"testing"
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/config"
	"congregation-api/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobs(t *testing.T) {
	db := testutil.TestDB(t)
	notifier := &recordingNotifier{}
	donations, donationRepo := newDonationService(db, notifier, passLocker{})
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	phone := NewPhoneVerificationService(repositories.NewAdminRepository(db), NewCredentialStore(), notifier)
	svc := NewCronService(donations, phone, tokenRepo, config.CronConfig{})
	ctx := context.Background()

	donor := testutil.CreateMember(t, db, "onesimus")
	d := &models.Donation{DonorID: donor.ID, Amount: 12, Currency: "USD", DonationDate: time.Now(), Status: "Completed"}
	require.NoError(t, donationRepo.Create(ctx, d))
	require.NoError(t, tokenRepo.Create(ctx, &models.RefreshToken{
		PrincipalKind: "MEMBER", PrincipalID: donor.ID, TokenHash: "old", ExpiresAt: time.Now().Add(-time.Minute),
	}))

	svc.RetryReceipts(ctx)
	svc.CleanupTokens(ctx)
	svc.CleanupPhoneCodes(ctx)

	assert.Equal(t, 1, notifier.count())

	var tokens int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&tokens).Error)
	assert.Zero(t, tokens)
}

func TestCronStartRejectsBadSpec(t *testing.T) {
	svc := NewCronService(nil, nil, nil, config.CronConfig{ReceiptRetrySpec: "every now and then"})
	assert.Error(t, svc.Start())
}

func TestCronStartStop(t *testing.T) {
	svc := NewCronService(nil, nil, nil, config.CronConfig{
		ReceiptRetrySpec: "@every 15m",
		TokenCleanupSpec: "0 3 * * *",
	})
	require.NoError(t, svc.Start())
	svc.Stop()
}
