package models

import (
	"time"

	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job is a listing posted by an employer's Profile.
type Job struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey"`
	PosterID    uuid.UUID     `gorm:"column:poster_id;type:uuid;not null;index"`
	Title       string        `gorm:"column:title;not null"`
	CompanyName string        `gorm:"column:company_name;not null"`
	Description *string       `gorm:"column:description"`
	Type        enums.JobType `gorm:"column:type;type:text;not null"`
	ApplyURL    string        `gorm:"column:apply_url;not null"`
	Active      bool          `gorm:"column:active;not null;default:true"`
	ExpiresAt   time.Time     `gorm:"column:expires_at;not null"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime"`

	Poster *Profile `gorm:"foreignKey:PosterID"`
}

func (j *Job) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
