package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/metrics"
	"congregation-api/internal/pkg/pagination"

	"gorm.io/gorm"
)

// ErrDonationNotFound is returned for unknown donations
var ErrDonationNotFound = errors.New("donation not found")

const (
	receiptRetryWindow = 30 * 24 * time.Hour
	receiptRetryBatch  = 50
)

// DonationService records donations and serializes receipt issuance per
// donation before handing over to the ledger.
type DonationService struct {
	donationRepo repositories.DonationRepository
	memberRepo   repositories.MemberRepository
	ledger       *DonationLedger
	notifier     Notifier
	locker       Locker
	lockTTL      time.Duration
}

// NewDonationService creates a new donation service
func NewDonationService(
	donationRepo repositories.DonationRepository,
	memberRepo repositories.MemberRepository,
	ledger *DonationLedger,
	notifier Notifier,
	locker Locker,
	lockTTL time.Duration,
) *DonationService {
	return &DonationService{
		donationRepo: donationRepo,
		memberRepo:   memberRepo,
		ledger:       ledger,
		notifier:     notifier,
		locker:       locker,
		lockTTL:      lockTTL,
	}
}

// CreateDonationInput represents a new donation. DonorID is only honoured
// for administrators recording a gift on a member's behalf.
type CreateDonationInput struct {
	DonorID        uint       `json:"donor_id"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	DonationDate   *time.Time `json:"donation_date"`
	PaymentMethod  string     `json:"payment_method"`
	Designation    string     `json:"designation"`
	TransactionFee *float64   `json:"transaction_fee"`
	Memo           string     `json:"memo"`
}

// ListDonationsOutput represents a page of donations
type ListDonationsOutput struct {
	Donations  []*models.Donation `json:"donations"`
	Pagination *pagination.Meta   `json:"pagination"`
}

// Create records a pending donation
func (s *DonationService) Create(ctx context.Context, actor *domain.Actor, input *CreateDonationInput) (*models.Donation, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	donorID := actor.ID
	if actor.IsAdmin() {
		if input.DonorID == 0 {
			return nil, domain.ErrInvalidInput
		}
		donorID = input.DonorID
	}

	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if input.TransactionFee != nil && *input.TransactionFee < 0 {
		return nil, domain.ErrInvalidInput
	}
	if c := strings.TrimSpace(input.Currency); c != "" && len(c) != 3 {
		return nil, domain.ErrInvalidInput
	}

	donor, err := s.memberRepo.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	donation := s.ledger.RecordDonation(RecordDonationInput{
		DonorID:        donor.ID,
		Amount:         input.Amount,
		Currency:       input.Currency,
		DonationDate:   input.DonationDate,
		PaymentMethod:  strings.TrimSpace(input.PaymentMethod),
		Designation:    strings.TrimSpace(input.Designation),
		TransactionFee: input.TransactionFee,
		Memo:           strings.TrimSpace(input.Memo),
	})

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, err
	}
	donation.Donor = donor

	metrics.RecordDonation()
	log.Printf("✅ Donation #%d recorded for member #%d: %.2f %s", donation.ID, donor.ID, donation.Amount, donation.Currency)
	return donation, nil
}

// GetByID returns a donation visible to the actor
func (s *DonationService) GetByID(ctx context.Context, actor *domain.Actor, id uint) (*models.Donation, error) {
	donation, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSeeDonation(actor, donation) {
		return nil, domain.ErrForbidden
	}
	return donation, nil
}

// ListMine lists the acting member's donations
func (s *DonationService) ListMine(ctx context.Context, actor *domain.Actor, params *pagination.Params) (*ListDonationsOutput, error) {
	if actor == nil || actor.Kind != domain.PrincipalMember {
		return nil, domain.ErrForbidden
	}

	donations, total, err := s.donationRepo.ListByDonor(ctx, actor.ID, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}
	return &ListDonationsOutput{
		Donations:  donations,
		Pagination: pagination.GetMeta(params, total),
	}, nil
}

// List lists all donations, optionally by status (admin)
func (s *DonationService) List(ctx context.Context, status string, params *pagination.Params) (*ListDonationsOutput, error) {
	if status != "" && !domain.DonationStatus(status).IsValid() {
		return nil, domain.ErrInvalidDonationStatus
	}

	donations, total, err := s.donationRepo.List(ctx, status, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}
	return &ListDonationsOutput{
		Donations:  donations,
		Pagination: pagination.GetMeta(params, total),
	}, nil
}

// UpdateStatus sets a donation's status to any known status
func (s *DonationService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Donation, error) {
	if !domain.DonationStatus(status).IsValid() {
		return nil, domain.ErrInvalidDonationStatus
	}

	if err := s.donationRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}

	log.Printf("✅ Donation #%d status set to %s", id, status)
	return s.get(ctx, id)
}

// PreviewReceipt returns the stored receipt, or renders one without storing it
func (s *DonationService) PreviewReceipt(ctx context.Context, actor *domain.Actor, id uint) (string, error) {
	donation, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if donation.Receipt != nil {
		return *donation.Receipt, nil
	}
	return s.ledger.GenerateReceipt(donation), nil
}

// IssueReceipt sends the receipt of a donation the actor may see. The
// returned donation's ReceiptSent tells whether the receipt went out.
func (s *DonationService) IssueReceipt(ctx context.Context, actor *domain.Actor, id uint) (*models.Donation, error) {
	donation, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if donation.ReceiptSent {
		return donation, nil
	}
	return s.issueLocked(ctx, id)
}

// RetryPendingReceipts re-attempts receipts of recent completed donations
// that were never sent. It returns how many went out.
func (s *DonationService) RetryPendingReceipts(ctx context.Context) (int, error) {
	since := time.Now().Add(-receiptRetryWindow)
	pending, err := s.donationRepo.ListUnsentReceipts(ctx, string(domain.DonationCompleted), since, receiptRetryBatch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, d := range pending {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		issued, err := s.issueLocked(ctx, d.ID)
		if err != nil {
			if !errors.Is(err, domain.ErrLockHeld) {
				log.Printf("⚠️ Receipt retry for donation #%d failed: %v", d.ID, err)
			}
			continue
		}
		if issued.ReceiptSent {
			sent++
		}
	}
	return sent, nil
}

// issueLocked holds the per-donation lock across re-read, dispatch and the
// conditional write.
func (s *DonationService) issueLocked(ctx context.Context, id uint) (*models.Donation, error) {
	release, err := s.locker.Acquire(ctx, receiptLockKey(id), s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			log.Printf("⚠️ Failed to release receipt lock for donation #%d: %v", id, err)
		}
	}()

	donation, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	donation, err = s.ledger.IssueReceipt(ctx, donation, s.notifier)
	if errors.Is(err, domain.ErrReceiptAlreadySent) {
		return s.get(ctx, id)
	}
	return donation, err
}

func (s *DonationService) get(ctx context.Context, id uint) (*models.Donation, error) {
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return donation, nil
}

func canSeeDonation(actor *domain.Actor, d *models.Donation) bool {
	return actor.IsAdmin() || actor.IsMember(d.DonorID)
}

func receiptLockKey(id uint) string {
	return fmt.Sprintf("donation:%d:receipt", id)
}
