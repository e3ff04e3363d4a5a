package services

import "log"

// Mailer delivers account-invite notifications to freelancers. The default
// implementation only records the notification; no mail provider is wired.
type Mailer interface {
	SendInvite(email, name, temporaryPassword string) error
}

// LogMailer writes notifications to the application log
type LogMailer struct{}

// NewLogMailer returns the logging Mailer implementation
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// SendInvite records an invite notification for a newly provisioned user
func (m *LogMailer) SendInvite(email, name, temporaryPassword string) error {
	log.Printf("invite notification queued for %s <%s>", name, email)
	return nil
}

// RecordingMailer captures invites in memory (used by tests)
type RecordingMailer struct {
	Invites []RecordedInvite
}

// RecordedInvite is one captured invite notification
type RecordedInvite struct {
	Email             string
	Name              string
	TemporaryPassword string
}

// SendInvite appends the invite to the in-memory record
func (m *RecordingMailer) SendInvite(email, name, temporaryPassword string) error {
	m.Invites = append(m.Invites, RecordedInvite{Email: email, Name: name, TemporaryPassword: temporaryPassword})
	return nil
}
