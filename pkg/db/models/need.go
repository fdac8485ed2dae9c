package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NeedCategory is a top-level entry of the needs taxonomy.
type NeedCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Options []NeedOption `gorm:"foreignKey:CategoryID"`
}

func (c *NeedCategory) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// NeedOption belongs to exactly one NeedCategory; slugs are unique per category.
type NeedOption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null;uniqueIndex:idx_need_options_category_slug"`
	Name       string    `gorm:"column:name;not null"`
	Slug       string    `gorm:"column:slug;not null;uniqueIndex:idx_need_options_category_slug"`
	SortOrder  int       `gorm:"column:sort_order;not null;default:0"`
	Active     bool      `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *NeedOption) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// ProjectNeed is one declared need of a project; at most one per category.
type ProjectNeed struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectID   uuid.UUID `gorm:"column:project_id;type:uuid;not null;uniqueIndex:idx_project_needs_project_category"`
	CategoryID  uuid.UUID `gorm:"column:category_id;type:uuid;not null;uniqueIndex:idx_project_needs_project_category"`
	ContextText *string   `gorm:"column:context_text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime:false"`

	Options []ProjectNeedOption `gorm:"foreignKey:ProjectNeedID"`
}

func (n *ProjectNeed) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// ProjectNeedOption links a ProjectNeed to one selected NeedOption.
type ProjectNeedOption struct {
	ProjectNeedID uuid.UUID `gorm:"column:project_need_id;type:uuid;primaryKey"`
	OptionID      uuid.UUID `gorm:"column:option_id;type:uuid;primaryKey"`
}
