package bookmarks

import (
	"time"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/google/uuid"
)

type ProfileCard struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Handle      string    `json:"handle"`
	Bio         *string   `json:"bio"`
	Location    *string   `json:"location"`
	PortraitURL *string   `json:"portraitUrl"`
}

type FavoriteDTO struct {
	ID        uuid.UUID    `json:"id"`
	ProfileID uuid.UUID    `json:"profileId"`
	CreatedAt time.Time    `json:"createdAt"`
	Profile   *ProfileCard `json:"profile,omitempty"`
}

type ProjectCard struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Status      enums.ProjectStatus `json:"status"`
	Creator     *ProfileCard        `json:"creator,omitempty"`
}

type FollowDTO struct {
	ID        uuid.UUID    `json:"id"`
	ProjectID uuid.UUID    `json:"projectId"`
	CreatedAt time.Time    `json:"createdAt"`
	Project   *ProjectCard `json:"project,omitempty"`
}

// AddResult distinguishes a new bookmark from an existing one.
type AddResult[T any] struct {
	Item    T    `json:"item"`
	Created bool `json:"created"`
}

func profileCard(p *models.Profile) *ProfileCard {
	if p == nil {
		return nil
	}
	return &ProfileCard{
		ID:          p.ID,
		Name:        p.Name,
		Handle:      p.Handle,
		Bio:         p.Bio,
		Location:    p.Location,
		PortraitURL: p.PortraitURL,
	}
}

func favoriteDTO(f *models.UserFavorite) FavoriteDTO {
	return FavoriteDTO{
		ID:        f.ID,
		ProfileID: f.ProfileID,
		CreatedAt: f.CreatedAt,
		Profile:   profileCard(f.Profile),
	}
}

func followDTO(f *models.ProjectFollow) FollowDTO {
	dto := FollowDTO{ID: f.ID, ProjectID: f.ProjectID, CreatedAt: f.CreatedAt}
	if f.Project != nil {
		dto.Project = &ProjectCard{
			ID:          f.Project.ID,
			Title:       f.Project.Title,
			Description: f.Project.Description,
			Status:      f.Project.Status,
			Creator:     profileCard(f.Project.Creator),
		}
	}
	return dto
}
