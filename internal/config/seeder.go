package config

import (
	"errors"
	"log"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdmin(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdmin creates the bootstrap administrator when no admin exists yet.
// Credentials come from SEED_ADMIN_* and are never defaulted.
func (s *Seeder) seedAdmin() error {
	var count int64
	if err := s.db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if s.cfg.AdminUsername == "" || s.cfg.AdminPassword == "" {
		return errors.New("SEED_ADMIN_USERNAME and SEED_ADMIN_PASSWORD are not set")
	}
	if !password.ValidatePassword(s.cfg.AdminPassword) {
		return errors.New("SEED_ADMIN_PASSWORD is too short")
	}

	hashedPassword, err := password.Hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.Admin{
		Username:     s.cfg.AdminUsername,
		Email:        s.cfg.AdminEmail,
		PhoneNumber:  s.cfg.AdminPhone,
		PasswordHash: hashedPassword,
		IsActive:     true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin created: %s", admin.Username)
	return nil
}
