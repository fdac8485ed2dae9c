// Package testutil builds throwaway SQLite databases and fixtures for
// repository and service tests.
package testutil

import (
	"testing"
	"time"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory database with the directory schema. The pool
// is pinned to one connection so every query sees the same memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Project{},
		&models.NeedCategory{},
		&models.NeedOption{},
		&models.ProjectNeed{},
		&models.ProjectNeedOption{},
		&models.Job{},
		&models.UserFavorite{},
		&models.ProjectFollow{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given account status.
func CreateUser(t *testing.T, db *gorm.DB, status enums.UserStatus) *models.User {
	t.Helper()
	user := &models.User{
		Email:  "member-" + uuid.NewString()[:8] + "@example.com",
		Status: status,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateAdmin inserts an approved admin user.
func CreateAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := CreateUser(t, db, enums.UserStatusApproved)
	if err := db.Model(user).Update("is_admin", true).Error; err != nil {
		t.Fatalf("failed to flag admin: %v", err)
	}
	user.IsAdmin = true
	return user
}

// CreateProfile inserts a profile for user in the given approval state.
func CreateProfile(t *testing.T, db *gorm.DB, user *models.User, handle string, status enums.ApprovalStatus) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		UserID:         user.ID,
		Name:           "Member " + handle,
		Handle:         handle,
		ApprovalStatus: status,
	}
	if status == enums.ApprovalStatusApproved {
		now := time.Now().UTC()
		profile.ApprovedAt = &now
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return profile
}

// CreateProject inserts an active project owned by creator.
func CreateProject(t *testing.T, db *gorm.DB, creator *models.Profile, title string) *models.Project {
	t.Helper()
	project := &models.Project{CreatorID: creator.ID, Title: title}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return project
}

// Member creates an approved user with an approved profile.
func Member(t *testing.T, db *gorm.DB, handle string) (*models.User, *models.Profile) {
	t.Helper()
	user := CreateUser(t, db, enums.UserStatusApproved)
	return user, CreateProfile(t, db, user, handle, enums.ApprovalStatusApproved)
}

// Taxonomy is a small seeded taxonomy keyed by slug.
type Taxonomy struct {
	Categories map[string]models.NeedCategory
	Options    map[string]models.NeedOption
}

// SeedTaxonomy inserts four categories with two or three options each.
// Category "legacy" and option "funding/retired" are inactive.
func SeedTaxonomy(t *testing.T, db *gorm.DB) Taxonomy {
	t.Helper()
	tax := Taxonomy{
		Categories: map[string]models.NeedCategory{},
		Options:    map[string]models.NeedOption{},
	}
	layout := []struct {
		slug    string
		options []string
	}{
		{"funding", []string{"angels", "grants", "retired"}},
		{"engineering", []string{"backend", "frontend"}},
		{"design", []string{"brand", "product"}},
		{"marketing", []string{"seo", "launch"}},
		{"legacy", []string{"fax"}},
	}
	for i, entry := range layout {
		category := models.NeedCategory{Name: entry.slug, Slug: entry.slug, SortOrder: i, Active: true}
		if err := db.Create(&category).Error; err != nil {
			t.Fatalf("failed to create category: %v", err)
		}
		for j, slug := range entry.options {
			option := models.NeedOption{CategoryID: category.ID, Name: slug, Slug: slug, SortOrder: j, Active: true}
			if err := db.Create(&option).Error; err != nil {
				t.Fatalf("failed to create option: %v", err)
			}
			tax.Options[entry.slug+"/"+slug] = option
		}
		tax.Categories[entry.slug] = category
	}

	// Zero-valued bools are skipped on insert, so deactivate explicitly.
	deactivate(t, db, &models.NeedCategory{}, tax.Categories["legacy"].ID)
	deactivate(t, db, &models.NeedOption{}, tax.Options["funding/retired"].ID)
	return tax
}

func deactivate(t *testing.T, db *gorm.DB, model any, id uuid.UUID) {
	t.Helper()
	if err := db.Model(model).Where("id = ?", id).Update("active", false).Error; err != nil {
		t.Fatalf("failed to deactivate %T: %v", model, err)
	}
}
