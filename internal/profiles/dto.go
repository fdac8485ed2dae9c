package profiles

import (
	"time"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
)

// ProfileDTO is the single-profile view. Owner linkage is only populated for
// full (owner or admin) views.
type ProfileDTO struct {
	ID             uuid.UUID            `json:"id"`
	UserID         *uuid.UUID           `json:"userId,omitempty"`
	Name           string               `json:"name"`
	Handle         string               `json:"handle"`
	Bio            *string              `json:"bio"`
	Location       *string              `json:"location"`
	PortraitURL    *string              `json:"portraitUrl"`
	WebsiteURL     *string              `json:"websiteUrl"`
	TwitterHandle  *string              `json:"twitterHandle"`
	GithubHandle   *string              `json:"githubHandle"`
	LinkedinURL    *string              `json:"linkedinUrl"`
	ApprovalStatus enums.ApprovalStatus `json:"approvalStatus"`
	ApprovedAt     *time.Time           `json:"approvedAt"`
	RejectionNote  *string              `json:"rejectionNote,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
	User           *OwnerDTO            `json:"user,omitempty"`
}

type OwnerDTO struct {
	ID          uuid.UUID        `json:"id"`
	Email       string           `json:"email"`
	Status      enums.UserStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	LastLoginAt *time.Time       `json:"lastLoginAt,omitempty"`
}

// ProfileCardDTO is the list representation; external links are left out.
type ProfileCardDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Handle      string    `json:"handle"`
	Bio         *string   `json:"bio"`
	Location    *string   `json:"location"`
	PortraitURL *string   `json:"portraitUrl"`
}

type ProfileListDTO struct {
	Profiles   []ProfileCardDTO `json:"profiles"`
	Pagination pagination.Meta  `json:"pagination"`
}

// UpdateResult tells the client whether the edit sent the profile back to review.
type UpdateResult struct {
	Profile            *ProfileDTO `json:"profile"`
	RequiresReapproval bool        `json:"requiresReapproval"`
}

// ToDTO renders a profile for the given visibility decision.
func ToDTO(p *models.Profile, decision visibility.Decision) *ProfileDTO {
	if p == nil {
		return nil
	}
	dto := &ProfileDTO{
		ID:             p.ID,
		Name:           p.Name,
		Handle:         p.Handle,
		Bio:            p.Bio,
		Location:       p.Location,
		PortraitURL:    p.PortraitURL,
		WebsiteURL:     p.WebsiteURL,
		TwitterHandle:  p.TwitterHandle,
		GithubHandle:   p.GithubHandle,
		LinkedinURL:    p.LinkedinURL,
		ApprovalStatus: p.ApprovalStatus,
		ApprovedAt:     p.ApprovedAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if decision != visibility.Full {
		return dto
	}
	userID := p.UserID
	dto.UserID = &userID
	dto.RejectionNote = p.RejectionNote
	if p.User != nil {
		dto.User = &OwnerDTO{
			ID:          p.User.ID,
			Email:       p.User.Email,
			Status:      p.User.Status,
			CreatedAt:   p.User.CreatedAt,
			LastLoginAt: p.User.LastLoginAt,
		}
	}
	return dto
}

func toCard(p models.Profile) ProfileCardDTO {
	return ProfileCardDTO{
		ID:          p.ID,
		Name:        p.Name,
		Handle:      p.Handle,
		Bio:         p.Bio,
		Location:    p.Location,
		PortraitURL: p.PortraitURL,
	}
}
