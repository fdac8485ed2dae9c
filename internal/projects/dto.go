package projects

import (
	"time"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
)

type ProjectDTO struct {
	ID                  uuid.UUID           `json:"id"`
	Title               string              `json:"title"`
	Description         *string             `json:"description"`
	Status              enums.ProjectStatus `json:"status"`
	WebsiteURL          *string             `json:"websiteUrl"`
	RepoURL             *string             `json:"repoUrl"`
	NeedsReminderSentAt *time.Time          `json:"needsReminderSentAt,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
	Creator             *CreatorDTO         `json:"creator,omitempty"`
}

// CreatorDTO summarizes the owning profile. UserID and ApprovalStatus are only
// set on full views.
type CreatorDTO struct {
	ID             uuid.UUID             `json:"id"`
	UserID         *uuid.UUID            `json:"userId,omitempty"`
	Name           string                `json:"name"`
	Handle         string                `json:"handle"`
	PortraitURL    *string               `json:"portraitUrl"`
	ApprovalStatus *enums.ApprovalStatus `json:"approvalStatus,omitempty"`
}

type ProjectListDTO struct {
	Projects   []ProjectDTO    `json:"projects"`
	Pagination pagination.Meta `json:"pagination"`
}

func ToDTO(p *models.Project, decision visibility.Decision) *ProjectDTO {
	if p == nil {
		return nil
	}
	dto := &ProjectDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		WebsiteURL:  p.WebsiteURL,
		RepoURL:     p.RepoURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Creator != nil {
		dto.Creator = &CreatorDTO{
			ID:          p.Creator.ID,
			Name:        p.Creator.Name,
			Handle:      p.Creator.Handle,
			PortraitURL: p.Creator.PortraitURL,
		}
	}
	if decision != visibility.Full {
		return dto
	}
	dto.NeedsReminderSentAt = p.NeedsReminderSentAt
	if dto.Creator != nil {
		userID, status := p.Creator.UserID, p.Creator.ApprovalStatus
		dto.Creator.UserID = &userID
		dto.Creator.ApprovalStatus = &status
	}
	return dto
}
