package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserFavorite is a private bookmark of another member's Profile.
type UserFavorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_favorites_user_profile"`
	ProfileID uuid.UUID `gorm:"column:profile_id;type:uuid;not null;uniqueIndex:idx_user_favorites_user_profile"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Profile *Profile `gorm:"foreignKey:ProfileID"`
}

func (f *UserFavorite) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ProjectFollow is a private bookmark of a Project.
type ProjectFollow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_project_follows_user_project"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;uniqueIndex:idx_project_follows_user_project"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Project *Project `gorm:"foreignKey:ProjectID"`
}

func (f *ProjectFollow) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
