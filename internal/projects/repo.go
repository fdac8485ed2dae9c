package projects

import (
	"context"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists projects.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListVisible(ctx context.Context, params pagination.Params) ([]models.Project, error)
	CountVisible(ctx context.Context) (int64, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Project, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Creator").First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) visible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Joins("JOIN profiles ON profiles.id = projects.creator_id").
		Scopes(visibility.ApprovedOnly("profiles.approval_status"))
}

// ListVisible pages through projects whose creator is approved, newest first.
func (r *repository) ListVisible(ctx context.Context, params pagination.Params) ([]models.Project, error) {
	var rows []models.Project
	err := r.visible(ctx).
		Preload("Creator").
		Order("projects.created_at DESC").
		Order("projects.id ASC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountVisible(ctx context.Context) (int64, error) {
	var total int64
	err := r.visible(ctx).Count(&total).Error
	return total, err
}

func (r *repository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Project, error) {
	var rows []models.Project
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a project together with its needs and follows. Callers run
// it inside a transaction.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	needIDs := db.Model(&models.ProjectNeed{}).Select("id").Where("project_id = ?", id)
	if err := db.Where("project_need_id IN (?)", needIDs).Delete(&models.ProjectNeedOption{}).Error; err != nil {
		return err
	}
	if err := db.Where("project_id = ?", id).Delete(&models.ProjectNeed{}).Error; err != nil {
		return err
	}
	if err := db.Where("project_id = ?", id).Delete(&models.ProjectFollow{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&models.Project{}).Error
}
