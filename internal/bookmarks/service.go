package bookmarks

import (
	"context"
	"errors"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages private bookmarks. Only approved profiles and projects of
// approved creators can be bookmarked or listed.
type Service interface {
	ListFavorites(ctx context.Context, viewer visibility.Viewer) ([]FavoriteDTO, error)
	AddFavorite(ctx context.Context, viewer visibility.Viewer, profileID uuid.UUID) (*AddResult[FavoriteDTO], error)
	RemoveFavorite(ctx context.Context, viewer visibility.Viewer, profileID uuid.UUID) error
	IsFavorite(ctx context.Context, viewer visibility.Viewer, profileID uuid.UUID) (bool, error)

	ListFollows(ctx context.Context, viewer visibility.Viewer) ([]FollowDTO, error)
	Follow(ctx context.Context, viewer visibility.Viewer, projectID uuid.UUID) (*AddResult[FollowDTO], error)
	Unfollow(ctx context.Context, viewer visibility.Viewer, projectID uuid.UUID) error
	IsFollowing(ctx context.Context, viewer visibility.Viewer, projectID uuid.UUID) (bool, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "bookmark repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListFavorites(ctx context.Context, viewer visibility.Viewer) ([]FavoriteDTO, error) {
	if err := visibility.EnsureCanBrowse(viewer); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListFavorites(ctx, viewer.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}
	out := make([]FavoriteDTO, 0, len(rows))
	for i := range rows {
		out = append(out, favoriteDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) AddFavorite(ctx context.Context, viewer visibility.Viewer, profileID uuid.UUID) (*AddResult[FavoriteDTO], error) {
	if err := visibility.EnsureCanBrowse(viewer); err != nil {
		return nil, err
	}
	profile, err := s.repo.FindProfile(ctx, profileID)
	if err != nil {
		return nil, mapLoadError(err, "profile")
	}
	if profile.ApprovalStatus != enums.ApprovalStatusApproved {
		return nil, visibility.NotFound("profile")
	}
	if profile.UserID == viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot favorite your own profile")
	}

	created, err := s.repo.AddFavorite(ctx, &models.UserFavorite{UserID: viewer.UserID, ProfileID: profileID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add favorite")
	}
	fav, err := s.repo.FindFavorite(ctx, viewer.UserID, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load favorite")
	}
	fav.Profile = profile
	return &AddResult[FavoriteDTO]{Item: favoriteDTO(fav), Created: created}, nil
}

func (s *service) RemoveFavorite(ctx context.Context, viewer visibility.Viewer, profileID uuid.UUID) error {
	if err := visibility.EnsureCanBrowse(viewer); err != nil {
		return err
	}
	removed, err := s.repo.RemoveFavorite(ctx, viewer.UserID, profileID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
	}
	if removed == 0 {
		return visibility.NotFound("favorite")
	}
	return nil
}

func (s *service) IsFavorite(ctx context.Context, viewer visibility.Viewer, profileID uuid.UUID) (bool, error) {
	if err := visibility.EnsureCanBrowse(viewer); err != nil {
		return false, err
	}
	_, err := s.repo.FindFavorite(ctx, viewer.UserID, profileID)
	return found(err)
}

func (s *service) ListFollows(ctx context.Context, viewer visibility.Viewer) ([]FollowDTO, error) {
	if err := visibility.EnsureCanBrowse(viewer); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListFollows(ctx, viewer.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list follows")
	}
	out := make([]FollowDTO, 0, len(rows))
	for i := range rows {
		out = append(out, followDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Follow(ctx context.Context, viewer visibility.Viewer, projectID uuid.UUID) (*AddResult[FollowDTO], error) {
	if err := visibility.EnsureCanBrowse(viewer); err != nil {
		return nil, err
	}
	project, err := s.repo.FindProject(ctx, projectID)
	if err != nil {
		return nil, mapLoadError(err, "project")
	}
	if project.Creator == nil || project.Creator.ApprovalStatus != enums.ApprovalStatusApproved {
		return nil, visibility.NotFound("project")
	}
	if project.Creator.UserID == viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot follow your own project")
	}

	created, err := s.repo.AddFollow(ctx, &models.ProjectFollow{UserID: viewer.UserID, ProjectID: projectID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "follow project")
	}
	follow, err := s.repo.FindFollow(ctx, viewer.UserID, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load follow")
	}
	follow.Project = project
	return &AddResult[FollowDTO]{Item: followDTO(follow), Created: created}, nil
}

func (s *service) Unfollow(ctx context.Context, viewer visibility.Viewer, projectID uuid.UUID) error {
	if err := visibility.EnsureCanBrowse(viewer); err != nil {
		return err
	}
	removed, err := s.repo.RemoveFollow(ctx, viewer.UserID, projectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unfollow project")
	}
	if removed == 0 {
		return visibility.NotFound("follow")
	}
	return nil
}

func (s *service) IsFollowing(ctx context.Context, viewer visibility.Viewer, projectID uuid.UUID) (bool, error) {
	if err := visibility.EnsureCanBrowse(viewer); err != nil {
		return false, err
	}
	_, err := s.repo.FindFollow(ctx, viewer.UserID, projectID)
	return found(err)
}

func found(err error) (bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check bookmark")
	}
	return true, nil
}

func mapLoadError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return visibility.NotFound(resource)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+resource)
}
