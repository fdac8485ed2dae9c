package projects

import (
	"context"
	"time"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaleProject is one project the needs reminder sweep should contact.
type StaleProject struct {
	ProjectID    uuid.UUID `gorm:"column:project_id"`
	ProjectTitle string    `gorm:"column:project_title"`
	ProfileName  string    `gorm:"column:profile_name"`
	Email        string    `gorm:"column:email"`
}

// ReminderRepository reads and writes the needs reminder watermark.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// ListStaleNeeds returns active projects of approved creators whose newest
// need and last reminder are both at or before cutoff. Projects without needs
// never match because the needs join is inner.
func (r *ReminderRepository) ListStaleNeeds(ctx context.Context, cutoff time.Time) ([]StaleProject, error) {
	var rows []StaleProject
	err := r.db.WithContext(ctx).
		Table("projects AS p").
		Select("p.id AS project_id, p.title AS project_title, pr.name AS profile_name, u.email AS email").
		Joins("JOIN profiles pr ON pr.id = p.creator_id").
		Joins("JOIN users u ON u.id = pr.user_id").
		Joins("JOIN project_needs n ON n.project_id = p.id").
		Where("p.status = ?", enums.ProjectStatusActive).
		Where("pr.approval_status = ?", enums.ApprovalStatusApproved).
		Where("(p.needs_reminder_sent_at IS NULL OR p.needs_reminder_sent_at <= ?)", cutoff).
		Group("p.id, p.title, pr.name, u.email").
		Having("MAX(n.updated_at) <= ?", cutoff).
		Order("p.id ASC").
		Scan(&rows).Error
	return rows, err
}

// MarkNeedsReminded moves the watermark without touching updated_at.
func (r *ReminderRepository) MarkNeedsReminded(ctx context.Context, projectID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", projectID).
		UpdateColumn("needs_reminder_sent_at", at).Error
}
