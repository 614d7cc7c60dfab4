package models

import (
	"errors"
	"time"

	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/password"

	"gorm.io/gorm"
)

// ErrUnhashedPassword is returned by the save hooks when a principal's
// password field does not hold a bcrypt hash.
var ErrUnhashedPassword = errors.New("refusing to persist a password that is not hashed")

// Principal is an identity that owns credentials
type Principal interface {
	PrincipalKind() domain.PrincipalKind
	PrincipalID() uint
	GetPasswordHash() string
	SetPasswordHash(hash string)
	ContactEmail() string
}

// ============================================================
// Principals
// ============================================================

// Member represents members table
type Member struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email            string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PhoneNumber      string    `gorm:"uniqueIndex;size:20;not null" json:"phone_number"`
	PasswordHash     string    `gorm:"size:255;not null" json:"-"`
	FullName         string    `gorm:"size:150" json:"full_name"`
	ShortBio         string    `gorm:"type:text" json:"short_bio"`
	MembershipStatus string    `gorm:"size:20;default:'pending'" json:"membership_status"`
	Role             string    `gorm:"size:20;default:'MEMBER'" json:"role"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}

func (m *Member) BeforeSave(tx *gorm.DB) error {
	return checkPasswordHash(m.PasswordHash)
}

func (m *Member) PrincipalKind() domain.PrincipalKind { return domain.PrincipalMember }
func (m *Member) PrincipalID() uint                   { return m.ID }
func (m *Member) GetPasswordHash() string             { return m.PasswordHash }
func (m *Member) SetPasswordHash(hash string)         { m.PasswordHash = hash }
func (m *Member) ContactEmail() string                { return m.Email }

// DisplayName returns the full name, falling back to the username
func (m *Member) DisplayName() string {
	if m.FullName != "" {
		return m.FullName
	}
	return m.Username
}

// MemberResponse DTO
type MemberResponse struct {
	ID               uint      `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PhoneNumber      string    `json:"phone_number"`
	FullName         string    `json:"full_name,omitempty"`
	ShortBio         string    `json:"short_bio,omitempty"`
	MembershipStatus string    `json:"membership_status"`
	Role             string    `json:"role"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:               m.ID,
		Username:         m.Username,
		Email:            m.Email,
		PhoneNumber:      m.PhoneNumber,
		FullName:         m.FullName,
		ShortBio:         m.ShortBio,
		MembershipStatus: m.MembershipStatus,
		Role:             m.Role,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
	}
}

// Admin represents admins table
type Admin struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	Username              string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email                 string     `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PhoneNumber           string     `gorm:"uniqueIndex;size:20;not null" json:"phone_number"`
	PasswordHash          string     `gorm:"size:255;not null" json:"-"`
	FirstName             string     `gorm:"size:100" json:"first_name"`
	LastName              string     `gorm:"size:100" json:"last_name"`
	PhoneVerificationCode *string    `gorm:"size:10" json:"-"`
	PhoneCodeExpiresAt    *time.Time `json:"-"`
	PhoneCodeAttempts     int        `gorm:"default:0" json:"-"`
	IsPhoneVerified       bool       `gorm:"default:false" json:"is_phone_verified"`
	IsActive              bool       `gorm:"default:true" json:"is_active"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeSave(tx *gorm.DB) error {
	return checkPasswordHash(a.PasswordHash)
}

func (a *Admin) PrincipalKind() domain.PrincipalKind { return domain.PrincipalAdmin }
func (a *Admin) PrincipalID() uint                   { return a.ID }
func (a *Admin) GetPasswordHash() string             { return a.PasswordHash }
func (a *Admin) SetPasswordHash(hash string)         { a.PasswordHash = hash }
func (a *Admin) ContactEmail() string                { return a.Email }

// AdminResponse DTO
type AdminResponse struct {
	ID              uint      `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PhoneNumber     string    `json:"phone_number"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	IsPhoneVerified bool      `json:"is_phone_verified"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func (a *Admin) ToResponse() *AdminResponse {
	return &AdminResponse{
		ID:              a.ID,
		Username:        a.Username,
		Email:           a.Email,
		PhoneNumber:     a.PhoneNumber,
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		IsPhoneVerified: a.IsPhoneVerified,
		IsActive:        a.IsActive,
		CreatedAt:       a.CreatedAt,
	}
}

func checkPasswordHash(hash string) error {
	if !password.IsHash(hash) {
		return ErrUnhashedPassword
	}
	return nil
}

// ============================================================
// Sessions
// ============================================================

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	PrincipalKind string     `gorm:"size:10;not null;index:idx_refresh_principal" json:"principal_kind"`
	PrincipalID   uint       `gorm:"not null;index:idx_refresh_principal" json:"principal_id"`
	TokenHash     string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt     *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate creates or updates all application tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Member{},
		&Admin{},
		&RefreshToken{},
		&ForumPost{},
		&Comment{},
		&PrayerRequest{},
		&Donation{},
	)
}
