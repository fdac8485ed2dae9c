package projects

import (
	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/sanitize"
)

// ProjectInput carries owner-supplied fields; nil means not sent.
type ProjectInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	WebsiteURL  *string `json:"websiteUrl"`
	RepoURL     *string `json:"repoUrl"`
}

// fields converts the input into column updates.
func (in ProjectInput) fields() (map[string]any, error) {
	out := map[string]any{}
	if in.Title != nil {
		title := sanitize.Text(*in.Title)
		if title == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty").
				WithDetails(map[string]string{"title": "is required"})
		}
		out["title"] = *title
	}
	if in.Description != nil {
		out["description"] = sanitize.Multiline(*in.Description)
	}
	if in.Status != nil {
		status, err := enums.ParseProjectStatus(*in.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project status").
				WithDetails(map[string]string{"status": "must be active, completed or archived"})
		}
		out["status"] = status
	}
	if in.WebsiteURL != nil {
		out["website_url"] = sanitize.URL(*in.WebsiteURL)
	}
	if in.RepoURL != nil {
		out["repo_url"] = sanitize.URL(*in.RepoURL)
	}
	return out, nil
}
