package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/config"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func newAuthService(db *gorm.DB, notifier Notifier) *AuthService {
	return NewAuthService(
		repositories.NewMemberRepository(db),
		repositories.NewAdminRepository(db),
		repositories.NewRefreshTokenRepository(db),
		NewCredentialStore(),
		notifier,
		testConfig(),
	)
}

func TestRegisterAndLogin(t *testing.T) {
	db := testutil.TestDB(t)
	notifier := &recordingNotifier{}
	svc := newAuthService(db, notifier)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Username:    "naomi",
		Email:       " Naomi@Example.org ",
		PhoneNumber: "+15550001111",
		Password:    "bethlehem-road",
		FullName:    "Naomi",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PrincipalMember, resp.Kind)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	svc.WaitForWelcomes()
	assert.Equal(t, 1, notifier.count())

	var stored models.Member
	require.NoError(t, db.Where("username = ?", "naomi").First(&stored).Error)
	assert.Equal(t, "naomi@example.org", stored.Email)
	assert.NotEqual(t, "bethlehem-road", stored.PasswordHash)

	_, err = svc.Register(ctx, &RegisterInput{
		Username:    "naomi2",
		Email:       "naomi@example.org",
		PhoneNumber: "+15550002222",
		Password:    "bethlehem-road",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register(ctx, &RegisterInput{Username: "orpah", Email: "orpah@example.org", PhoneNumber: "+15550003333", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(ctx, &RegisterInput{Username: "orpah", Email: "orpah@example.org", PhoneNumber: "+15550003333", Password: strings.Repeat("x", 73)})
	assert.ErrorIs(t, err, ErrWeakPassword)

	login, err := svc.Login(ctx, &LoginInput{Username: "naomi", Password: "bethlehem-road"})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.PrincipalID)
	assert.Equal(t, string(domain.PrincipalMember), claims.Kind)

	_, err = svc.Login(ctx, &LoginInput{Username: "naomi", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &LoginInput{Username: "nobody", Password: "bethlehem-road"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterSurvivesWelcomeFailure(t *testing.T) {
	db := testutil.TestDB(t)
	svc := newAuthService(db, &recordingNotifier{err: assert.AnError})

	_, err := svc.Register(context.Background(), &RegisterInput{
		Username:    "boaz",
		Email:       "boaz@example.org",
		PhoneNumber: "+15550004444",
		Password:    "threshing-floor",
	})
	assert.NoError(t, err)
	svc.WaitForWelcomes()
}

// gatedNotifier blocks every send until release is closed
type gatedNotifier struct {
	release chan struct{}
	sent    chan string
}

func (n *gatedNotifier) Send(ctx context.Context, address, _, _ string) error {
	select {
	case <-n.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	n.sent <- address
	return nil
}

func TestRegisterDoesNotWaitForWelcome(t *testing.T) {
	db := testutil.TestDB(t)
	notifier := &gatedNotifier{release: make(chan struct{}), sent: make(chan string, 1)}
	svc := newAuthService(db, notifier)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Register(context.Background(), &RegisterInput{
			Username:    "ruth",
			Email:       "ruth@example.org",
			PhoneNumber: "+15550005555",
			Password:    "gleaning-fields",
		})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("registration blocked on the welcome email")
	}

	close(notifier.release)
	svc.WaitForWelcomes()
	assert.Equal(t, "ruth@example.org", <-notifier.sent)
}

func TestLoginRejectsInactive(t *testing.T) {
	db := testutil.TestDB(t)
	svc := newAuthService(db, &recordingNotifier{})

	member := testutil.CreateMember(t, db, "demas")
	require.NoError(t, db.Model(member).UpdateColumn("is_active", false).Error)

	_, err := svc.Login(context.Background(), &LoginInput{Username: "demas", Password: testutil.FixturePassword})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestAdminLogin(t *testing.T) {
	db := testutil.TestDB(t)
	svc := newAuthService(db, &recordingNotifier{})
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, db, "pastor")
	testutil.CreateMember(t, db, "pastor")

	resp, err := svc.AdminLogin(ctx, &LoginInput{Username: "pastor", Password: testutil.FixturePassword})
	require.NoError(t, err)
	assert.Equal(t, domain.PrincipalAdmin, resp.Kind)

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.PrincipalID)
	assert.Equal(t, string(domain.PrincipalAdmin), claims.Kind)

	_, err = svc.AdminLogin(ctx, &LoginInput{Username: "pastor", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokenRotation(t *testing.T) {
	db := testutil.TestDB(t)
	svc := newAuthService(db, &recordingNotifier{})
	ctx := context.Background()

	testutil.CreateMember(t, db, "silas")
	login, err := svc.Login(ctx, &LoginInput{Username: "silas", Password: testutil.FixturePassword})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	_, err = svc.RefreshToken(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutAll(t *testing.T) {
	db := testutil.TestDB(t)
	svc := newAuthService(db, &recordingNotifier{})
	ctx := context.Background()

	member := testutil.CreateMember(t, db, "timothy")
	first, err := svc.Login(ctx, &LoginInput{Username: "timothy", Password: testutil.FixturePassword})
	require.NoError(t, err)
	second, err := svc.Login(ctx, &LoginInput{Username: "timothy", Password: testutil.FixturePassword})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, domain.PrincipalMember, member.ID))

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		_, err = svc.RefreshToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	}
}

func TestGetPrincipal(t *testing.T) {
	db := testutil.TestDB(t)
	svc := newAuthService(db, &recordingNotifier{})
	ctx := context.Background()

	member := testutil.CreateMember(t, db, "titus")
	principal, err := svc.GetPrincipal(ctx, domain.PrincipalMember, member.ID)
	require.NoError(t, err)
	resp, ok := principal.(*models.MemberResponse)
	require.True(t, ok)
	assert.Equal(t, "titus", resp.Username)

	_, err = svc.GetPrincipal(ctx, domain.PrincipalAdmin, member.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
