package notifications

import (
	"bytes"
	"html/template"
)

const layoutStyle = `font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 480px; margin: 0 auto; padding: 40px 20px;`

var templates = template.Must(template.New("emails").Parse(`
{{define "approved"}}<div style="{{.Style}}">
  <h1 style="font-size: 24px; font-weight: 600; margin-bottom: 24px; color: #1a1a1a;">Welcome to the directory</h1>
  <p style="font-size: 16px; line-height: 1.5; color: #4a4a4a; margin-bottom: 24px;">Your profile <strong>{{.ProfileName}}</strong> has been approved. You now have full access to the directory.</p>
  <a href="{{.Link}}" style="display: inline-block; background-color: #1a1a1a; color: #ffffff; padding: 12px 24px; text-decoration: none; font-size: 16px; font-weight: 500;">View Directory</a>
</div>{{end}}

{{define "rejected"}}<div style="{{.Style}}">
  <h1 style="font-size: 24px; font-weight: 600; margin-bottom: 24px; color: #1a1a1a;">Profile Review Update</h1>
  <p style="font-size: 16px; line-height: 1.5; color: #4a4a4a; margin-bottom: 24px;">Your profile <strong>{{.ProfileName}}</strong> was not approved at this time.</p>
  {{if .Note}}<p style="font-size: 16px; line-height: 1.5; color: #4a4a4a; margin-bottom: 24px; padding: 16px; background-color: #f5f5f5;"><strong>Note:</strong> {{.Note}}</p>{{end}}
  <p style="font-size: 16px; line-height: 1.5; color: #4a4a4a; margin-bottom: 24px;">You can update your profile and resubmit for review.</p>
  <a href="{{.Link}}" style="display: inline-block; background-color: #1a1a1a; color: #ffffff; padding: 12px 24px; text-decoration: none; font-size: 16px; font-weight: 500;">Edit Profile</a>
</div>{{end}}

{{define "reminder"}}<div style="{{.Style}}">
  <h1 style="font-size: 24px; font-weight: 600; margin-bottom: 24px; color: #1a1a1a;">Keep your project needs current</h1>
  <p style="font-size: 16px; line-height: 1.5; color: #4a4a4a; margin-bottom: 24px;">Hi {{.ProfileName}},</p>
  <p style="font-size: 16px; line-height: 1.5; color: #4a4a4a; margin-bottom: 24px;">It's been a while since you updated the needs for <strong>{{.ProjectTitle}}</strong>. Keeping your needs current helps the community know how they can support you.</p>
  <a href="{{.Link}}" style="display: inline-block; background-color: #1a1a1a; color: #ffffff; padding: 12px 24px; text-decoration: none; font-size: 16px; font-weight: 500;">Update Project Needs</a>
  <p style="font-size: 14px; color: #888; margin-top: 32px;">If your needs are still accurate, you can dismiss this reminder by visiting your project and saving without changes.</p>
</div>{{end}}
`))

type emailView struct {
	Style        template.CSS
	ProfileName  string
	ProjectTitle string
	Note         string
	Link         string
}

func render(name string, view emailView) (string, error) {
	view.Style = template.CSS(layoutStyle)
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
