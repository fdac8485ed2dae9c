package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NeedReminder identifies the project a stale-needs reminder is about.
type NeedReminder struct {
	To           string
	ProfileName  string
	ProjectTitle string
	ProjectID    uuid.UUID
}

// Mailer renders directory emails and hands them to a Sender.
type Mailer struct {
	sender Sender
	appURL string
}

func NewMailer(sender Sender, appURL string) (*Mailer, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	return &Mailer{sender: sender, appURL: strings.TrimRight(appURL, "/")}, nil
}

func (m *Mailer) SendProfileApproved(ctx context.Context, to, profileName string) error {
	return m.send(ctx, to, "Your profile has been approved", "approved", emailView{
		ProfileName: profileName,
		Link:        m.appURL,
	})
}

func (m *Mailer) SendProfileRejected(ctx context.Context, to, profileName string, note *string) error {
	view := emailView{
		ProfileName: profileName,
		Link:        m.appURL + "/account/profile",
	}
	if note != nil {
		view.Note = strings.TrimSpace(*note)
	}
	return m.send(ctx, to, "Your profile needs changes", "rejected", view)
}

func (m *Mailer) SendNeedReminder(ctx context.Context, reminder NeedReminder) error {
	return m.send(ctx, reminder.To, "Update your needs for "+reminder.ProjectTitle, "reminder", emailView{
		ProfileName:  reminder.ProfileName,
		ProjectTitle: reminder.ProjectTitle,
		Link:         fmt.Sprintf("%s/projects/%s", m.appURL, reminder.ProjectID),
	})
}

func (m *Mailer) send(ctx context.Context, to, subject, tmpl string, view emailView) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("email recipient required")
	}
	body, err := render(tmpl, view)
	if err != nil {
		return fmt.Errorf("render %s email: %w", tmpl, err)
	}
	return m.sender.Send(ctx, Message{To: to, Subject: subject, HTML: body})
}
