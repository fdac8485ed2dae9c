package jobs

import (
	"time"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/google/uuid"
)

type JobDTO struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	CompanyName string        `json:"companyName"`
	Description *string       `json:"description"`
	Type        enums.JobType `json:"type"`
	ApplyURL    string        `json:"applyUrl"`
	Active      bool          `json:"active"`
	ExpiresAt   time.Time     `json:"expiresAt"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Poster      *PosterDTO    `json:"poster,omitempty"`
}

type PosterDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Handle      string    `json:"handle"`
	PortraitURL *string   `json:"portraitUrl"`
	Bio         *string   `json:"bio,omitempty"`
}

type JobListDTO struct {
	Jobs       []JobDTO        `json:"jobs"`
	Pagination pagination.Meta `json:"pagination"`
}

func ToDTO(j *models.Job) *JobDTO {
	if j == nil {
		return nil
	}
	dto := &JobDTO{
		ID:          j.ID,
		Title:       j.Title,
		CompanyName: j.CompanyName,
		Description: j.Description,
		Type:        j.Type,
		ApplyURL:    j.ApplyURL,
		Active:      j.Active,
		ExpiresAt:   j.ExpiresAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if j.Poster != nil {
		dto.Poster = &PosterDTO{
			ID:          j.Poster.ID,
			Name:        j.Poster.Name,
			Handle:      j.Poster.Handle,
			PortraitURL: j.Poster.PortraitURL,
			Bio:         j.Poster.Bio,
		}
	}
	return dto
}
