package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/metrics"
)

// ReceiptSubject is the subject line of receipt notifications
const ReceiptSubject = "Donation Receipt"

var errNoDonorAddress = errors.New("donor has no email address")

// RecordDonationInput holds the fields of a new donation
type RecordDonationInput struct {
	DonorID        uint
	Amount         float64
	Currency       string
	DonationDate   *time.Time
	PaymentMethod  string
	Designation    string
	TransactionFee *float64
	Memo           string
}

// DonationLedger owns the donation lifecycle: construction, receipt
// synthesis and the receipt-sent transition.
type DonationLedger struct {
	donationRepo repositories.DonationRepository
	now          func() time.Time
}

// NewDonationLedger creates a new donation ledger
func NewDonationLedger(donationRepo repositories.DonationRepository) *DonationLedger {
	return &DonationLedger{
		donationRepo: donationRepo,
		now:          time.Now,
	}
}

// RecordDonation builds a pending donation with no receipt. It does not persist.
func (l *DonationLedger) RecordDonation(input RecordDonationInput) *models.Donation {
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}

	donationDate := l.now()
	if input.DonationDate != nil {
		donationDate = *input.DonationDate
	}

	return &models.Donation{
		DonorID:        input.DonorID,
		Amount:         input.Amount,
		Currency:       currency,
		DonationDate:   donationDate,
		PaymentMethod:  input.PaymentMethod,
		Designation:    input.Designation,
		TransactionFee: input.TransactionFee,
		Memo:           input.Memo,
		Status:         string(domain.DonationPending),
		ReceiptSent:    false,
		Receipt:        nil,
	}
}

// GenerateReceipt delegates to the package-level generator
func (l *DonationLedger) GenerateReceipt(d *models.Donation) string {
	return GenerateReceipt(d)
}

// GenerateReceipt renders the receipt document for a donation. Output depends
// only on the donation's fields, and the donation is not modified.
func GenerateReceipt(d *models.Donation) string {
	designation := d.Designation
	if designation == "" {
		designation = "Not specified"
	}

	fee := "Not specified"
	if d.TransactionFee != nil && *d.TransactionFee != 0 {
		fee = formatAmount(*d.TransactionFee)
	}

	memo := d.Memo
	if memo == "" {
		memo = "None"
	}

	sent := "No"
	if d.ReceiptSent {
		sent = "Yes"
	}

	var b strings.Builder
	b.WriteString("Donation Receipt\n")
	b.WriteString("----------------\n\n")
	fmt.Fprintf(&b, "Donor: %s\n", donorLabel(d))
	fmt.Fprintf(&b, "Amount: %s %s\n", formatAmount(d.Amount), d.Currency)
	fmt.Fprintf(&b, "Donation Date: %s\n", d.DonationDate.Format("Mon Jan 02 2006"))
	fmt.Fprintf(&b, "Payment Method: %s\n", d.PaymentMethod)
	fmt.Fprintf(&b, "Designation: %s\n", designation)
	fmt.Fprintf(&b, "Transaction Fee: %s\n", fee)
	fmt.Fprintf(&b, "Memo: %s\n\n", memo)
	fmt.Fprintf(&b, "Status: %s\n", d.Status)
	fmt.Fprintf(&b, "Receipt Sent: %s\n", sent)
	return b.String()
}

func donorLabel(d *models.Donation) string {
	if d.Donor == nil {
		return fmt.Sprintf("Member #%d", d.DonorID)
	}
	return fmt.Sprintf("%s (Member #%d)", d.Donor.DisplayName(), d.DonorID)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// IssueReceipt sends the receipt to the donor and marks it sent.
//
// A donation whose receipt was already sent is returned as is without dispatch.
// A failed dispatch is logged and leaves the donation unchanged with a nil error;
// callers read ReceiptSent to learn the outcome and own any retry. A failed
// write after a successful dispatch returns a *domain.PersistenceError.
//
// The ReceiptSent check is not atomic with the dispatch. Callers that can race
// on one donation must serialize; the conditional write then reports the loser
// with domain.ErrReceiptAlreadySent.
func (l *DonationLedger) IssueReceipt(ctx context.Context, d *models.Donation, notifier Notifier) (*models.Donation, error) {
	if d.ReceiptSent {
		return d, nil
	}

	receipt := GenerateReceipt(d)

	address := ""
	if d.Donor != nil {
		address = d.Donor.Email
	}

	var sendErr error
	if address == "" {
		sendErr = &domain.NotificationError{Address: address, Err: errNoDonorAddress}
	} else if err := notifier.Send(ctx, address, ReceiptSubject, receipt); err != nil {
		sendErr = &domain.NotificationError{Address: address, Err: err}
	}
	if sendErr != nil {
		metrics.RecordReceiptDispatch(metrics.ReceiptFailed)
		log.Printf("⚠️ Receipt for donation #%d not sent: %v", d.ID, sendErr)
		return d, nil
	}

	if err := l.donationRepo.MarkReceiptSent(ctx, d.ID, receipt); err != nil {
		if errors.Is(err, domain.ErrReceiptAlreadySent) {
			metrics.RecordReceiptDispatch(metrics.ReceiptAlreadySent)
			d.ReceiptSent = true
			return d, err
		}
		metrics.RecordReceiptDispatch(metrics.ReceiptPersistFailed)
		return d, &domain.PersistenceError{Op: "mark receipt sent", Err: err}
	}

	d.ReceiptSent = true
	d.Receipt = &receipt
	metrics.RecordReceiptDispatch(metrics.ReceiptSent)
	log.Printf("✅ Receipt sent for donation #%d to %s", d.ID, address)
	return d, nil
}
