package services

import (
	"context"
	"log/slog"
)

// Mailer delivers account emails.
type Mailer interface {
	SendConfirmation(ctx context.Context, to, link string) error
}

// LogMailer writes confirmation links to the structured log instead of
// sending mail. Used until an SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) SendConfirmation(ctx context.Context, to, link string) error {
	slog.InfoContext(ctx, "confirmation email", "to", to, "link", link)
	return nil
}
