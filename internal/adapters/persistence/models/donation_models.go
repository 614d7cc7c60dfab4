package models

import "time"

// Donation represents donations table
type Donation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DonorID        uint      `gorm:"not null;index" json:"donor_id"`
	Amount         float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency       string    `gorm:"size:3;default:'USD'" json:"currency"`
	DonationDate   time.Time `gorm:"not null" json:"donation_date"`
	PaymentMethod  string    `gorm:"size:50" json:"payment_method"`
	Designation    string    `gorm:"size:100" json:"designation"`
	TransactionFee *float64  `gorm:"type:decimal(12,2)" json:"transaction_fee"`
	Memo           string    `gorm:"type:text" json:"memo"`
	Status         string    `gorm:"size:20;default:'Pending';index" json:"status"`
	ReceiptSent    bool      `gorm:"default:false;index" json:"receipt_sent"`
	Receipt        *string   `gorm:"type:text" json:"receipt,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Donor *Member `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
}

func (Donation) TableName() string {
	return "donations"
}
