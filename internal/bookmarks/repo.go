package bookmarks

import (
	"context"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists favorites (profiles) and follows (projects).
type Repository interface {
	FindProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindProject(ctx context.Context, id uuid.UUID) (*models.Project, error)

	AddFavorite(ctx context.Context, fav *models.UserFavorite) (bool, error)
	FindFavorite(ctx context.Context, userID, profileID uuid.UUID) (*models.UserFavorite, error)
	RemoveFavorite(ctx context.Context, userID, profileID uuid.UUID) (int64, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.UserFavorite, error)

	AddFollow(ctx context.Context, follow *models.ProjectFollow) (bool, error)
	FindFollow(ctx context.Context, userID, projectID uuid.UUID) (*models.ProjectFollow, error)
	RemoveFollow(ctx context.Context, userID, projectID uuid.UUID) (int64, error)
	ListFollows(ctx context.Context, userID uuid.UUID) ([]models.ProjectFollow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Creator").First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// AddFavorite inserts the favorite unless it already exists. The boolean
// reports whether a row was written.
func (r *repository) AddFavorite(ctx context.Context, fav *models.UserFavorite) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fav)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FindFavorite(ctx context.Context, userID, profileID uuid.UUID) (*models.UserFavorite, error) {
	var fav models.UserFavorite
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND profile_id = ?", userID, profileID).
		First(&fav).Error
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

func (r *repository) RemoveFavorite(ctx context.Context, userID, profileID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND profile_id = ?", userID, profileID).
		Delete(&models.UserFavorite{})
	return res.RowsAffected, res.Error
}

// ListFavorites returns the user's favorites of currently approved profiles.
func (r *repository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.UserFavorite, error) {
	var rows []models.UserFavorite
	err := r.db.WithContext(ctx).
		Joins("JOIN profiles ON profiles.id = user_favorites.profile_id").
		Scopes(visibility.ApprovedOnly("profiles.approval_status")).
		Where("user_favorites.user_id = ?", userID).
		Preload("Profile").
		Order("user_favorites.created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) AddFollow(ctx context.Context, follow *models.ProjectFollow) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FindFollow(ctx context.Context, userID, projectID uuid.UUID) (*models.ProjectFollow, error) {
	var follow models.ProjectFollow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&follow).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *repository) RemoveFollow(ctx context.Context, userID, projectID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.ProjectFollow{})
	return res.RowsAffected, res.Error
}

// ListFollows returns followed projects whose creator is approved.
func (r *repository) ListFollows(ctx context.Context, userID uuid.UUID) ([]models.ProjectFollow, error) {
	var rows []models.ProjectFollow
	err := r.db.WithContext(ctx).
		Joins("JOIN projects ON projects.id = project_follows.project_id").
		Joins("JOIN profiles ON profiles.id = projects.creator_id").
		Scopes(visibility.ApprovedOnly("profiles.approval_status")).
		Where("project_follows.user_id = ?", userID).
		Preload("Project.Creator").
		Order("project_follows.created_at DESC").
		Find(&rows).Error
	return rows, err
}
