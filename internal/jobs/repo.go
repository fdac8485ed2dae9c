package jobs

import (
	"context"
	"time"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists job listings.
type Repository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListOpen(ctx context.Context, now time.Time, params pagination.Params) ([]models.Job, error)
	CountOpen(ctx context.Context, now time.Time) (int64, error)
	ListByPoster(ctx context.Context, posterID uuid.UUID) ([]models.Job, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Preload("Poster").First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// open restricts to active, unexpired listings of approved posters.
func (r *repository) open(ctx context.Context, now time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Job{}).
		Joins("JOIN profiles ON profiles.id = jobs.poster_id").
		Scopes(visibility.ApprovedOnly("profiles.approval_status")).
		Where("jobs.active = ? AND jobs.expires_at > ?", true, now)
}

func (r *repository) ListOpen(ctx context.Context, now time.Time, params pagination.Params) ([]models.Job, error) {
	var rows []models.Job
	err := r.open(ctx, now).
		Preload("Poster").
		Order("jobs.created_at DESC").
		Order("jobs.id ASC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountOpen(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	err := r.open(ctx, now).Count(&total).Error
	return total, err
}

func (r *repository) ListByPoster(ctx context.Context, posterID uuid.UUID) ([]models.Job, error) {
	var rows []models.Job
	err := r.db.WithContext(ctx).
		Where("poster_id = ?", posterID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Updates(fields).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Job{}).Error
}
