package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

const (
	phoneCodeLength      = 6
	phoneCodeTTL         = 15 * time.Minute
	phoneCodeMaxAttempts = 5
	phoneCodeResendAfter = time.Minute

	phoneCodeSubject = "Your phone verification code"
)

// Phone verification errors
var (
	ErrAdminNotFound        = errors.New("administrator not found")
	ErrPhoneAlreadyVerified = errors.New("phone number already verified")
	ErrNoCodeRequested      = errors.New("no verification code requested")
	ErrCodeExpired          = errors.New("verification code expired")
	ErrTooManyAttempts      = errors.New("too many wrong attempts, request a new code")
	ErrInvalidCode          = errors.New("verification code is incorrect")
	ErrCodeRequestedTooSoon = errors.New("please wait a minute before requesting a new code")
)

// PhoneVerificationService runs the administrator phone verification
// workflow. Codes live on the admin row so every instance sees them.
type PhoneVerificationService struct {
	adminRepo   repositories.AdminRepository
	credentials *CredentialStore
	notifier    Notifier
	now         func() time.Time
}

// NewPhoneVerificationService creates a new phone verification service
func NewPhoneVerificationService(
	adminRepo repositories.AdminRepository,
	credentials *CredentialStore,
	notifier Notifier,
) *PhoneVerificationService {
	return &PhoneVerificationService{
		adminRepo:   adminRepo,
		credentials: credentials,
		notifier:    notifier,
		now:         time.Now,
	}
}

// RequestCode generates a new code for the admin and delivers it
func (s *PhoneVerificationService) RequestCode(ctx context.Context, adminID uint) error {
	admin, err := s.getAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if admin.IsPhoneVerified {
		return ErrPhoneAlreadyVerified
	}

	now := s.now()
	if admin.PhoneCodeExpiresAt != nil && admin.PhoneCodeExpiresAt.Sub(now) > phoneCodeTTL-phoneCodeResendAfter {
		return ErrCodeRequestedTooSoon
	}

	code, err := generateSecureCode(phoneCodeLength)
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}

	s.credentials.SetPhoneVerificationCode(admin, code, now.Add(phoneCodeTTL))
	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return err
	}

	body := fmt.Sprintf("Your verification code for %s is %s. It expires in %d minutes.\n",
		admin.PhoneNumber, code, int(phoneCodeTTL.Minutes()))
	if err := s.notifier.Send(ctx, admin.Email, phoneCodeSubject, body); err != nil {
		return err
	}

	log.Printf("✅ Phone verification code sent to admin #%d", admin.ID)
	return nil
}

// VerifyCode checks a submitted code. A wrong code consumes one attempt.
func (s *PhoneVerificationService) VerifyCode(ctx context.Context, adminID uint, code string) (*models.Admin, error) {
	admin, err := s.getAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.IsPhoneVerified {
		return admin, ErrPhoneAlreadyVerified
	}
	if admin.PhoneVerificationCode == nil || admin.PhoneCodeExpiresAt == nil {
		return nil, ErrNoCodeRequested
	}
	if s.now().After(*admin.PhoneCodeExpiresAt) {
		return nil, ErrCodeExpired
	}
	if admin.PhoneCodeAttempts >= phoneCodeMaxAttempts {
		return nil, ErrTooManyAttempts
	}

	code = strings.TrimSpace(code)
	if subtle.ConstantTimeCompare([]byte(code), []byte(*admin.PhoneVerificationCode)) != 1 {
		admin.PhoneCodeAttempts++
		if err := s.adminRepo.Update(ctx, admin); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w (%d attempts left)", ErrInvalidCode, phoneCodeMaxAttempts-admin.PhoneCodeAttempts)
	}

	s.credentials.MarkPhoneVerified(admin)
	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return nil, err
	}

	log.Printf("✅ Phone verified for admin #%d", admin.ID)
	return admin, nil
}

// ClearExpiredCodes removes codes past their expiry
func (s *PhoneVerificationService) ClearExpiredCodes(ctx context.Context) (int64, error) {
	return s.adminRepo.ClearExpiredPhoneCodes(ctx, s.now())
}

func (s *PhoneVerificationService) getAdmin(ctx context.Context, adminID uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

// generateSecureCode generates a cryptographically secure numeric code
func generateSecureCode(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
