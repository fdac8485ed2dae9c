package needs

import (
	"context"
	"time"

	"github.com/angelmondragon/directory-backend/pkg/db"
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists project needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	LockProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	DeleteForProject(ctx context.Context, projectID uuid.UUID) error
	Insert(ctx context.Context, needs []models.ProjectNeed) error
	ListForProject(ctx context.Context, projectID uuid.UUID) ([]needRow, error)
}

// needRow is one (need, option) pair of the denormalized read. Needs without
// options yield a single row with nil option columns.
type needRow struct {
	NeedID       uuid.UUID
	CategoryID   uuid.UUID
	CategoryName string
	CategorySlug string
	CategorySort int
	ContextText  *string
	UpdatedAt    time.Time
	OptionID     *uuid.UUID
	OptionName   *string
	OptionSlug   *string
	OptionSort   *int
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

func (r *repository) FindProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Creator").First(&project, "id = ?", projectID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// LockProject takes the project row lock that serializes replaces of the same
// project. The creator is loaded with a second, unlocked read.
func (r *repository) LockProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).
		Scopes(db.ForUpdate).
		First(&project, "id = ?", projectID).Error; err != nil {
		return nil, err
	}
	var creator models.Profile
	if err := r.db.WithContext(ctx).First(&creator, "id = ?", project.CreatorID).Error; err != nil {
		return nil, err
	}
	project.Creator = &creator
	return &project, nil
}

func (r *repository) DeleteForProject(ctx context.Context, projectID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	needIDs := db.Model(&models.ProjectNeed{}).Select("id").Where("project_id = ?", projectID)
	if err := db.Where("project_need_id IN (?)", needIDs).Delete(&models.ProjectNeedOption{}).Error; err != nil {
		return err
	}
	return db.Where("project_id = ?", projectID).Delete(&models.ProjectNeed{}).Error
}

func (r *repository) Insert(ctx context.Context, needs []models.ProjectNeed) error {
	if len(needs) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	links := make([]models.ProjectNeedOption, 0, len(needs)*MaxOptions)
	for _, need := range needs {
		links = append(links, need.Options...)
	}
	if err := db.Omit("Options").Create(&needs).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	return db.Create(&links).Error
}

// ListForProject reads the needs of a project with category and option names
// in a single statement, so a concurrent replace is seen either entirely or
// not at all. Inactive taxonomy entries still resolve their names.
func (r *repository) ListForProject(ctx context.Context, projectID uuid.UUID) ([]needRow, error) {
	var rows []needRow
	err := r.db.WithContext(ctx).
		Table("project_needs AS n").
		Select(`n.id AS need_id, n.category_id, c.name AS category_name, c.slug AS category_slug,
			c.sort_order AS category_sort, n.context_text, n.updated_at,
			o.id AS option_id, o.name AS option_name, o.slug AS option_slug, o.sort_order AS option_sort`).
		Joins("JOIN need_categories AS c ON c.id = n.category_id").
		Joins("LEFT JOIN project_need_options AS pno ON pno.project_need_id = n.id").
		Joins("LEFT JOIN need_options AS o ON o.id = pno.option_id").
		Where("n.project_id = ?", projectID).
		Order("c.sort_order ASC").
		Order("n.category_id ASC").
		Order("o.sort_order ASC").
		Scan(&rows).Error
	return rows, err
}
