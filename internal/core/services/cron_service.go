package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/config"

	"github.com/robfig/cron/v3"
)

const cronJobTimeout = 5 * time.Minute

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron             *cron.Cron
	donations        *DonationService
	phoneCodes       *PhoneVerificationService
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              config.CronConfig
}

// NewCronService creates a new cron service
func NewCronService(
	donations *DonationService,
	phoneCodes *PhoneVerificationService,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg config.CronConfig,
) *CronService {
	return &CronService{
		cron:             cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		donations:        donations,
		phoneCodes:       phoneCodes,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"receipt retry", s.cfg.ReceiptRetrySpec, s.RetryReceipts},
		{"refresh token cleanup", s.cfg.TokenCleanupSpec, s.CleanupTokens},
		{"phone code cleanup", s.cfg.PhoneCodeSpec, s.CleanupPhoneCodes},
	}

	for _, job := range jobs {
		if job.spec == "" {
			log.Printf("⚠️ Cron job %q disabled", job.name)
			continue
		}
		run := job.run
		if _, err := s.cron.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), cronJobTimeout)
			defer cancel()
			run(ctx)
		}); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.name, job.spec, err)
		}
	}

	s.cron.Start()
	log.Println("🚀 CronService started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 CronService stopped")
}

// RetryReceipts re-sends receipts that failed earlier
func (s *CronService) RetryReceipts(ctx context.Context) {
	sent, err := s.donations.RetryPendingReceipts(ctx)
	if err != nil {
		log.Printf("❌ Receipt retry error: %v", err)
		return
	}
	if sent > 0 {
		log.Printf("✅ Receipt retry sent %d receipt(s)", sent)
	}
}

// CleanupTokens deletes expired refresh tokens
func (s *CronService) CleanupTokens(ctx context.Context) {
	deleted, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Refresh token cleanup error: %v", err)
		return
	}
	log.Printf("✅ Deleted %d expired refresh token(s)", deleted)
}

// CleanupPhoneCodes clears expired phone verification codes
func (s *CronService) CleanupPhoneCodes(ctx context.Context) {
	cleared, err := s.phoneCodes.ClearExpiredCodes(ctx)
	if err != nil {
		log.Printf("❌ Phone code cleanup error: %v", err)
		return
	}
	if cleared > 0 {
		log.Printf("✅ Cleared %d expired phone code(s)", cleared)
	}
}
