package testutil

import (
	"fmt"
	"sync"
	"testing"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// FixturePassword is the plaintext behind every fixture principal
const FixturePassword = "fixture-password"

var (
	fixtureHashOnce sync.Once
	fixtureHash     string
)

// TestDB returns an isolated in-memory SQLite database with all tables migrated
func TestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// FixtureHash returns a bcrypt hash of FixturePassword, computed once per test binary
func FixtureHash(t *testing.T) string {
	t.Helper()
	fixtureHashOnce.Do(func() {
		h, err := password.Hash(FixturePassword)
		if err != nil {
			panic(err)
		}
		fixtureHash = h
	})
	return fixtureHash
}

// CreateMember inserts a member whose email and phone derive from username
func CreateMember(t *testing.T, db *gorm.DB, username string) *models.Member {
	t.Helper()

	member := &models.Member{
		Username:     username,
		Email:        username + "@example.org",
		PhoneNumber:  phoneFor(username),
		PasswordHash: FixtureHash(t),
		FullName:     username,
		Role:         "MEMBER",
		IsActive:     true,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("create member %s: %v", username, err)
	}
	return member
}

// CreateAdmin inserts an administrator whose email and phone derive from username
func CreateAdmin(t *testing.T, db *gorm.DB, username string) *models.Admin {
	t.Helper()

	admin := &models.Admin{
		Username:     username,
		Email:        username + "@admin.example.org",
		PhoneNumber:  phoneFor("admin-" + username),
		PasswordHash: FixtureHash(t),
		IsActive:     true,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin %s: %v", username, err)
	}
	return admin
}

func phoneFor(seed string) string {
	var n uint32 = 2166136261
	for i := 0; i < len(seed); i++ {
		n ^= uint32(seed[i])
		n *= 16777619
	}
	return fmt.Sprintf("+1%010d", uint64(n)%10000000000)
}
