package users

import (
	"time"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/google/uuid"
)

// UserDTO is the account view returned to the user themselves and to admins.
type UserDTO struct {
	ID          uuid.UUID          `json:"id"`
	Email       string             `json:"email"`
	Status      enums.UserStatus   `json:"status"`
	IsEmployer  bool               `json:"isEmployer"`
	IsAdmin     bool               `json:"isAdmin"`
	LastLoginAt *time.Time         `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	Profile     *ProfileSummaryDTO `json:"profile,omitempty"`
}

type ProfileSummaryDTO struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Handle         string               `json:"handle"`
	ApprovalStatus enums.ApprovalStatus `json:"approvalStatus"`
}

type UserListDTO struct {
	Users      []UserDTO       `json:"users"`
	Pagination pagination.Meta `json:"pagination"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Status:      u.Status,
		IsEmployer:  u.IsEmployer,
		IsAdmin:     u.IsAdmin,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	if u.Profile != nil {
		dto.Profile = &ProfileSummaryDTO{
			ID:             u.Profile.ID,
			Name:           u.Profile.Name,
			Handle:         u.Profile.Handle,
			ApprovalStatus: u.Profile.ApprovalStatus,
		}
	}
	return dto
}
