package jobs

import (
	"time"

	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/sanitize"
)

// DefaultExpiry is how long a listing stays open when no expiry is given.
const DefaultExpiry = 30 * 24 * time.Hour

// JobInput carries poster-supplied fields; nil means not sent.
type JobInput struct {
	Title       *string    `json:"title"`
	CompanyName *string    `json:"companyName"`
	Description *string    `json:"description"`
	Type        *string    `json:"type"`
	ApplyURL    *string    `json:"applyUrl"`
	Active      *bool      `json:"active"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

func invalidField(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]string{field: msg})
}

// fields validates the provided values and returns column updates.
func (in JobInput) fields() (map[string]any, error) {
	out := map[string]any{}
	if in.Title != nil {
		title := sanitize.Text(*in.Title)
		if title == nil {
			return nil, invalidField("title", "title is required")
		}
		out["title"] = *title
	}
	if in.CompanyName != nil {
		company := sanitize.Text(*in.CompanyName)
		if company == nil {
			return nil, invalidField("companyName", "company name is required")
		}
		out["company_name"] = *company
	}
	if in.Description != nil {
		out["description"] = sanitize.Multiline(*in.Description)
	}
	if in.Type != nil {
		jobType, err := enums.ParseJobType(*in.Type)
		if err != nil {
			return nil, invalidField("type", "type must be full_time, part_time, contract or freelance")
		}
		out["type"] = jobType
	}
	if in.ApplyURL != nil {
		applyURL := sanitize.AbsoluteURL(*in.ApplyURL)
		if applyURL == nil {
			return nil, invalidField("applyUrl", "apply URL must be a valid http or https URL")
		}
		out["apply_url"] = *applyURL
	}
	if in.Active != nil {
		out["active"] = *in.Active
	}
	if in.ExpiresAt != nil {
		out["expires_at"] = in.ExpiresAt.UTC()
	}
	return out, nil
}

// required reports the first create-time field that was not sent.
func (in JobInput) required() error {
	switch {
	case in.Title == nil:
		return invalidField("title", "title is required")
	case in.CompanyName == nil:
		return invalidField("companyName", "company name is required")
	case in.Type == nil:
		return invalidField("type", "job type is required")
	case in.ApplyURL == nil:
		return invalidField("applyUrl", "apply URL is required")
	}
	return nil
}
