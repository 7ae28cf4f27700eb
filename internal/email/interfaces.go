// Package email contains the SMTP transport and the verification
// message composer.
package email

// Sender delivers a single email.
// Implemented by SMTPSender; tests inject fakes.
type Sender interface {
	// Send delivers an email with HTML and plain-text bodies.
	// The recipient gets both as multipart/alternative.
	Send(to string, subject string, htmlBody string, textBody string) error
}
