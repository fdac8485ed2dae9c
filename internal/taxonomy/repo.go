package taxonomy

import (
	"context"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists the needs taxonomy.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActive(ctx context.Context) ([]models.NeedCategory, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*models.NeedCategory, error)
	CreateCategory(ctx context.Context, category *models.NeedCategory) error
	UpdateCategory(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindOption(ctx context.Context, categoryID uuid.UUID, slug string) (*models.NeedOption, error)
	CreateOption(ctx context.Context, option *models.NeedOption) error
	UpdateOption(ctx context.Context, id uuid.UUID, fields map[string]any) error
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

// ListActive returns active categories by rank with their active options.
// Equal ranks fall back to insertion order.
func (r *repository) ListActive(ctx context.Context) ([]models.NeedCategory, error) {
	var categories []models.NeedCategory
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("active = ?", true).Order("sort_order ASC").Order("created_at ASC")
		}).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&categories).Error
	return categories, err
}

func (r *repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.NeedCategory, error) {
	var category models.NeedCategory
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *models.NeedCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) UpdateCategory(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.NeedCategory{}).Where("id = ?", id).Updates(fields).Error
}

func (r *repository) FindOption(ctx context.Context, categoryID uuid.UUID, slug string) (*models.NeedOption, error) {
	var option models.NeedOption
	if err := r.db.WithContext(ctx).
		Where("category_id = ? AND slug = ?", categoryID, slug).
		First(&option).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

func (r *repository) CreateOption(ctx context.Context, option *models.NeedOption) error {
	return r.db.WithContext(ctx).Create(option).Error
}

func (r *repository) UpdateOption(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.NeedOption{}).Where("id = ?", id).Updates(fields).Error
}
