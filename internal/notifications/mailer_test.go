package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestProfileApprovedEmail(t *testing.T) {
	sender := &recordingSender{}
	mailer, err := NewMailer(sender, "https://dir.example.com/")
	require.NoError(t, err)

	require.NoError(t, mailer.SendProfileApproved(context.Background(), "ada@example.com", "Ada <Lovelace>"))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "Your profile has been approved", msg.Subject)
	assert.Contains(t, msg.HTML, `href="https://dir.example.com"`)
	assert.Contains(t, msg.HTML, "Ada &lt;Lovelace&gt;")
}

func TestProfileRejectedEmailNote(t *testing.T) {
	sender := &recordingSender{}
	mailer, err := NewMailer(sender, "https://dir.example.com")
	require.NoError(t, err)

	note := "  bad photo "
	require.NoError(t, mailer.SendProfileRejected(context.Background(), "ada@example.com", "Ada", &note))
	assert.Contains(t, sender.sent[0].HTML, "bad photo")
	assert.Contains(t, sender.sent[0].HTML, "/account/profile")

	require.NoError(t, mailer.SendProfileRejected(context.Background(), "ada@example.com", "Ada", nil))
	assert.NotContains(t, sender.sent[1].HTML, "Note:")
}

func TestNeedReminderEmail(t *testing.T) {
	sender := &recordingSender{}
	mailer, err := NewMailer(sender, "https://dir.example.com")
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, mailer.SendNeedReminder(context.Background(), NeedReminder{
		To:           "ada@example.com",
		ProfileName:  "Ada",
		ProjectTitle: "Engine",
		ProjectID:    id,
	}))
	assert.Equal(t, "Update your needs for Engine", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, "/projects/"+id.String())
}

func TestMailerPropagatesSenderErrors(t *testing.T) {
	boom := errors.New("relay down")
	mailer, err := NewMailer(&recordingSender{err: boom}, "")
	require.NoError(t, err)
	assert.ErrorIs(t, mailer.SendProfileApproved(context.Background(), "a@example.com", "A"), boom)
	assert.Error(t, mailer.SendProfileApproved(context.Background(), " ", "A"))
}

type fakeDialer struct {
	messages []*gomail.Message
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.messages = append(f.messages, m...)
	return nil
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	d := &fakeDialer{}
	sender := &SMTPSender{from: "noreply@example.com", dialer: d}
	require.NoError(t, sender.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>"}))
	require.Len(t, d.messages, 1)
	assert.Equal(t, []string{"a@example.com"}, d.messages[0].GetHeader("To"))
	assert.Equal(t, []string{"Hi"}, d.messages[0].GetHeader("Subject"))
}
