package models

import (
	"time"

	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical identity entity.
type User struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Email            string           `gorm:"type:text;not null;uniqueIndex"`
	Status           enums.UserStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	IsEmployer       bool             `gorm:"column:is_employer;not null;default:false"`
	IsAdmin          bool             `gorm:"column:is_admin;not null;default:false"`
	StripeCustomerID *string          `gorm:"column:stripe_customer_id;uniqueIndex"`
	LastLoginAt      *time.Time       `gorm:"column:last_login_at"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Profile *Profile `gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = enums.UserStatusPending
	}
	return nil
}
