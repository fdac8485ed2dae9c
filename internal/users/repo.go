package users

import (
	"context"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDWithProfile loads a user together with its profile, if any.
func (r *Repository) FindByIDWithProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users newest first with their profile summary.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error
	return total, err
}

// UpdateStatusFrom moves a user from one status to another and reports how
// many rows matched. Zero means the user was no longer in the expected state.
func (r *Repository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to enums.UserStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// SetEmployerByCustomerID toggles the employer capability of the user bound
// to a Stripe customer.
func (r *Repository) SetEmployerByCustomerID(ctx context.Context, customerID string, employer bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("stripe_customer_id = ?", customerID).
		Update("is_employer", employer)
	return res.RowsAffected, res.Error
}

// FindByIDWithTx loads a user inside an existing transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	return r.WithTx(tx).FindByID(tx.Statement.Context, id)
}

// ApproveIfPendingWithTx promotes a pending account once its profile is
// approved. Suspended and already approved accounts are left untouched.
func (r *Repository) ApproveIfPendingWithTx(tx *gorm.DB, id uuid.UUID) error {
	_, err := r.WithTx(tx).UpdateStatusFrom(tx.Statement.Context, id, enums.UserStatusPending, enums.UserStatusApproved)
	return err
}
