package profiles

import (
	"context"
	"strings"

	"github.com/angelmondragon/directory-backend/pkg/db"
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	FindByHandle(ctx context.Context, handle string) (*models.Profile, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	LockByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	HandleTaken(ctx context.Context, handle string, exclude uuid.UUID) (bool, error)
	UpdateFromStatus(ctx context.Context, id uuid.UUID, expected enums.ApprovalStatus, fields map[string]any) (int64, error)
	ListApproved(ctx context.Context, params pagination.Params) ([]models.Profile, error)
	CountApproved(ctx context.Context) (int64, error)
	ListPending(ctx context.Context) ([]models.Profile, error)
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

func (r *repository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Preload("User").First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("handle = ?", strings.ToLower(handle)).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// LockByID re-reads a profile with a row lock so concurrent transitions
// serialize on it.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Scopes(db.ForUpdate).
		First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) LockByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Scopes(db.ForUpdate).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) HandleTaken(ctx context.Context, handle string, exclude uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Profile{}).Where("handle = ?", handle)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFromStatus applies fields only while the profile is still in the
// expected approval status. Zero rows means another transition won.
func (r *repository) UpdateFromStatus(ctx context.Context, id uuid.UUID, expected enums.ApprovalStatus, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ? AND approval_status = ?", id, expected).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *repository) ListApproved(ctx context.Context, params pagination.Params) ([]models.Profile, error) {
	var rows []models.Profile
	err := r.db.WithContext(ctx).
		Scopes(visibility.ApprovedOnly("approval_status")).
		Order("name ASC").
		Order("id ASC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountApproved(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Scopes(visibility.ApprovedOnly("approval_status")).
		Count(&total).Error
	return total, err
}

// ListPending returns the review queue, oldest submission first.
func (r *repository) ListPending(ctx context.Context) ([]models.Profile, error) {
	var rows []models.Profile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("approval_status = ?", enums.ApprovalStatusPendingReview).
		Order("updated_at ASC").
		Find(&rows).Error
	return rows, err
}
