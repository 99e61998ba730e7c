//go:build integration

package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenPostgres connects to the throwaway database named by TEST_DATABASE_DSN
// and migrates it. The test is skipped when the variable is unset.
//
//	TEST_DATABASE_DSN="host=localhost user=postgres password=postgres dbname=family_todo_test sslmode=disable" \
//	  go test -tags integration ./...
func OpenPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// CreateUser inserts a confirmed user with a unique email and returns the
// identity a signed-in request would carry.
func CreateUser(t *testing.T, db *gorm.DB) session.User {
	t.Helper()
	now := time.Now()
	u := models.User{
		ID:               uuid.New(),
		Email:            uuid.NewString() + "@example.com",
		Password:         "unused",
		EmailConfirmedAt: &now,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return session.User{ID: u.ID, Email: u.Email, SessionID: uuid.New()}
}
