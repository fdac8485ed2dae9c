package models

import (
	"time"

	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is owned by exactly one Profile (CreatorID).
type Project struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey"`
	CreatorID           uuid.UUID           `gorm:"column:creator_id;type:uuid;not null;index"`
	Title               string              `gorm:"column:title;not null"`
	Description         *string             `gorm:"column:description"`
	Status              enums.ProjectStatus `gorm:"column:status;type:text;not null;default:'active'"`
	WebsiteURL          *string             `gorm:"column:website_url"`
	RepoURL             *string             `gorm:"column:repo_url"`
	NeedsReminderSentAt *time.Time          `gorm:"column:needs_reminder_sent_at"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Creator *Profile `gorm:"foreignKey:CreatorID"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = enums.ProjectStatusActive
	}
	return nil
}
