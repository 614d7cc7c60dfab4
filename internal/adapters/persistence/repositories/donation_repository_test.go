package repositories

import (
	"context"
	"testing"
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/testutil"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type DonationRepositorySuite struct {
	suite.Suite
	repo  DonationRepository
	donor *models.Member
	ctx   context.Context
}

func (s *DonationRepositorySuite) SetupTest() {
	db := testutil.TestDB(s.T())
	s.repo = NewDonationRepository(db)
	s.donor = testutil.CreateMember(s.T(), db, "zacchaeus")
	s.ctx = context.Background()
}

func TestDonationRepositorySuite(t *testing.T) {
	suite.Run(t, new(DonationRepositorySuite))
}

func (s *DonationRepositorySuite) newDonation(status string, date time.Time) *models.Donation {
	d := &models.Donation{
		DonorID:      s.donor.ID,
		Amount:       40,
		Currency:     "USD",
		DonationDate: date,
		Status:       status,
	}
	s.Require().NoError(s.repo.Create(s.ctx, d))
	return d
}

// TestMarkReceiptSent verifies the conditional receipt write.
func (s *DonationRepositorySuite) TestMarkReceiptSent() {
	s.Run("first writer wins", func() {
		d := s.newDonation("Completed", time.Now())
		s.Require().NoError(s.repo.MarkReceiptSent(s.ctx, d.ID, "first"))
		s.ErrorIs(s.repo.MarkReceiptSent(s.ctx, d.ID, "second"), domain.ErrReceiptAlreadySent)

		stored, err := s.repo.GetByID(s.ctx, d.ID)
		s.Require().NoError(err)
		s.True(stored.ReceiptSent)
		s.Require().NotNil(stored.Receipt)
		s.Equal("first", *stored.Receipt)
		s.Require().NotNil(stored.Donor)
		s.Equal(s.donor.Username, stored.Donor.Username)
	})

	s.Run("unknown donation is not found", func() {
		s.ErrorIs(s.repo.MarkReceiptSent(s.ctx, 404, "none"), gorm.ErrRecordNotFound)
	})
}

// TestUpdateStatus verifies status writes, including same-value updates.
func (s *DonationRepositorySuite) TestUpdateStatus() {
	d := s.newDonation("Pending", time.Now())

	s.Require().NoError(s.repo.UpdateStatus(s.ctx, d.ID, "Pending"))
	s.Require().NoError(s.repo.UpdateStatus(s.ctx, d.ID, "Refunded"))
	s.ErrorIs(s.repo.UpdateStatus(s.ctx, 404, "Pending"), gorm.ErrRecordNotFound)

	donations, total, err := s.repo.ListByDonor(s.ctx, s.donor.ID, 0, 10)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("Refunded", donations[0].Status)
}

// TestListUnsentReceipts verifies the retry sweep's selection.
func (s *DonationRepositorySuite) TestListUnsentReceipts() {
	recent := s.newDonation("Completed", time.Now().Add(-time.Hour))
	s.newDonation("Pending", time.Now())
	s.newDonation("Completed", time.Now().AddDate(0, -2, 0))
	sent := s.newDonation("Completed", time.Now())
	s.Require().NoError(s.repo.MarkReceiptSent(s.ctx, sent.ID, "done"))

	unsent, err := s.repo.ListUnsentReceipts(s.ctx, "Completed", time.Now().AddDate(0, 0, -30), 10)
	s.Require().NoError(err)
	s.Require().Len(unsent, 1)
	s.Equal(recent.ID, unsent[0].ID)

	list, total, err := s.repo.List(s.ctx, "Completed", 0, 10)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(list, 3)
}
