package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkhalaf/tasktrail/internal/models"
)

// newTestDB opens an isolated in-memory database. The shared cache keeps the
// schema alive across pooled connections within one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Membership{},
		&models.Task{},
		&models.Note{},
		&models.RefreshToken{},
		&models.SystemLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, Role: models.SystemRoleUser, AuthType: "local"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestProject(t *testing.T, db *gorm.DB, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, Description: "test project"}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

func attachWithRole(t *testing.T, db *gorm.DB, projectID, userID uint, role string) *models.Membership {
	t.Helper()
	svc := NewMembershipService(db)
	m, err := svc.Attach(projectID, &AttachRequest{UserID: userID, Role: role})
	if err != nil {
		t.Fatalf("failed to attach user %d to project %d: %v", userID, projectID, err)
	}
	return m
}
