// Package mail abstracts outbound verification mail. The default
// implementation only logs; SMTP delivery can be plugged in behind the
// same interface.
package mail

import (
	"context"
	"log/slog"
)

// Mailer delivers verification codes to users.
type Mailer interface {
	// SendVerificationCode sends the 6-digit OTP to the address.
	SendVerificationCode(ctx context.Context, email, code string) error
}

// LogMailer writes the code to the structured log instead of sending mail.
// Useful for local development and tests.
type LogMailer struct{}

// NewLogMailer returns a Mailer that logs instead of sending.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendVerificationCode(_ context.Context, email, code string) error {
	slog.Info("verification_code_issued", "email", email, "code", code)
	return nil
}
