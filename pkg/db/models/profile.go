package models

import (
	"time"

	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the public-facing identity owned 1:1 by a User.
type Profile struct {
	ID             uuid.UUID            `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID            `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Name           string               `gorm:"column:name;not null"`
	Handle         string               `gorm:"column:handle;not null;uniqueIndex"`
	Bio            *string              `gorm:"column:bio"`
	Location       *string              `gorm:"column:location"`
	PortraitURL    *string              `gorm:"column:portrait_url"`
	WebsiteURL     *string              `gorm:"column:website_url"`
	TwitterHandle  *string              `gorm:"column:twitter_handle"`
	GithubHandle   *string              `gorm:"column:github_handle"`
	LinkedinURL    *string              `gorm:"column:linkedin_url"`
	ApprovalStatus enums.ApprovalStatus `gorm:"column:approval_status;type:text;not null;default:'draft'"`
	ApprovedAt     *time.Time           `gorm:"column:approved_at"`
	RejectionNote  *string              `gorm:"column:rejection_note"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	User *User `gorm:"foreignKey:UserID"`
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ApprovalStatus == "" {
		p.ApprovalStatus = enums.ApprovalStatusDraft
	}
	return nil
}
