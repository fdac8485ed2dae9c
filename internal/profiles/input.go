package profiles

import (
	"strings"

	"github.com/angelmondragon/directory-backend/internal/approval"
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/sanitize"
)

const handleRuleMessage = "handle must be 3-30 characters, lowercase letters, numbers, and underscores only"

// ProfileInput carries owner-supplied fields. A nil pointer means the field
// was not sent; a pointer to "" clears an optional field.
type ProfileInput struct {
	Name          *string `json:"name"`
	Handle        *string `json:"handle"`
	Bio           *string `json:"bio"`
	Location      *string `json:"location"`
	PortraitURL   *string `json:"portraitUrl"`
	WebsiteURL    *string `json:"websiteUrl"`
	TwitterHandle *string `json:"twitterHandle"`
	GithubHandle  *string `json:"githubHandle"`
	LinkedinURL   *string `json:"linkedinUrl"`
}

// columns maps each editable field onto its profiles column.
var columns = map[approval.Field]string{
	approval.FieldName:          "name",
	approval.FieldHandle:        "handle",
	approval.FieldPortraitURL:   "portrait_url",
	approval.FieldBio:           "bio",
	approval.FieldLocation:      "location",
	approval.FieldWebsiteURL:    "website_url",
	approval.FieldTwitterHandle: "twitter_handle",
	approval.FieldGithubHandle:  "github_handle",
	approval.FieldLinkedinURL:   "linkedin_url",
}

// sanitized returns the cleaned values of every field present in the input.
func (in ProfileInput) sanitized() approval.Values {
	out := approval.Values{}
	text := func(field approval.Field, raw *string, clean func(string) *string) {
		if raw != nil {
			out[field] = clean(*raw)
		}
	}
	text(approval.FieldName, in.Name, sanitize.Text)
	text(approval.FieldBio, in.Bio, sanitize.Multiline)
	text(approval.FieldLocation, in.Location, sanitize.Text)
	text(approval.FieldPortraitURL, in.PortraitURL, sanitize.URL)
	text(approval.FieldWebsiteURL, in.WebsiteURL, sanitize.URL)
	text(approval.FieldLinkedinURL, in.LinkedinURL, sanitize.URL)
	text(approval.FieldTwitterHandle, in.TwitterHandle, socialHandle)
	text(approval.FieldGithubHandle, in.GithubHandle, socialHandle)
	if in.Handle != nil {
		handle := sanitize.Handle(*in.Handle)
		out[approval.FieldHandle] = &handle
	}
	return out
}

// validate checks required fields among the provided values.
func validate(values approval.Values) error {
	if name, ok := values[approval.FieldName]; ok && name == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty").
			WithDetails(map[string]string{"name": "is required"})
	}
	if handle, ok := values[approval.FieldHandle]; ok {
		if handle == nil || !sanitize.ValidHandle(*handle) {
			return pkgerrors.New(pkgerrors.CodeValidation, handleRuleMessage).
				WithDetails(map[string]string{"handle": "is invalid"})
		}
	}
	return nil
}

func currentValues(p *models.Profile) approval.Values {
	name, handle := p.Name, p.Handle
	return approval.Values{
		approval.FieldName:          &name,
		approval.FieldHandle:        &handle,
		approval.FieldPortraitURL:   p.PortraitURL,
		approval.FieldBio:           p.Bio,
		approval.FieldLocation:      p.Location,
		approval.FieldWebsiteURL:    p.WebsiteURL,
		approval.FieldTwitterHandle: p.TwitterHandle,
		approval.FieldGithubHandle:  p.GithubHandle,
		approval.FieldLinkedinURL:   p.LinkedinURL,
	}
}

func applyValues(p *models.Profile, values approval.Values) {
	for field, value := range values {
		switch field {
		case approval.FieldName:
			p.Name = *value
		case approval.FieldHandle:
			p.Handle = *value
		case approval.FieldPortraitURL:
			p.PortraitURL = value
		case approval.FieldBio:
			p.Bio = value
		case approval.FieldLocation:
			p.Location = value
		case approval.FieldWebsiteURL:
			p.WebsiteURL = value
		case approval.FieldTwitterHandle:
			p.TwitterHandle = value
		case approval.FieldGithubHandle:
			p.GithubHandle = value
		case approval.FieldLinkedinURL:
			p.LinkedinURL = value
		}
	}
}

// socialHandle drops a leading @ so handles are stored bare.
func socialHandle(raw string) *string {
	return sanitize.Text(strings.TrimLeft(strings.TrimSpace(raw), "@"))
}
