package notification

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pattarapol/jotter-api/shared/mailer"
)

// EmailNotifier sends the transactional emails of the auth flows. Sends
// are best-effort: failures are logged and never propagated, so mail
// delivery cannot fail a request.
type EmailNotifier struct {
	mailer     *mailer.Mailer
	logger     *zerolog.Logger
	appBaseURL string
	keyTTL     time.Duration
}

// NewEmailNotifier creates an EmailNotifier. appBaseURL is the frontend
// base used to build confirmation links.
func NewEmailNotifier(
	m *mailer.Mailer,
	logger *zerolog.Logger,
	appBaseURL string,
	keyTTL time.Duration,
) *EmailNotifier {
	return &EmailNotifier{
		mailer:     m,
		logger:     logger,
		appBaseURL: appBaseURL,
		keyTTL:     keyTTL,
	}
}

func (n *EmailNotifier) SignupSuccess(email, name string) {
	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your account has been created. Welcome to Jotter!</p>
		<p>Thank you,</p>
		<p>Jotter Team</p>
	`, name)

	n.send(email, "Welcome to Jotter", htmlBody)
}

func (n *EmailNotifier) PasswordUpdated(email string) {
	htmlBody := `
		<p>Hi,</p>
		<p>Your password has been changed. You have been signed out everywhere and will need to sign in again.</p>
		<p>If you did not make this change, please reset your password immediately.</p>
		<p>Thank you,</p>
		<p>Jotter Team</p>
	`

	n.send(email, "Your Password Was Updated", htmlBody)
}

func (n *EmailNotifier) VerifyEmail(email, key string) {
	verifyLink := fmt.Sprintf("%s/verify-email?key=%s", n.appBaseURL, key)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>Please confirm your email address by clicking the link below:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s.</p>
		<p>Thank you,</p>
		<p>Jotter Team</p>
	`, verifyLink, verifyLink, n.keyTTL)

	n.send(email, "Verify Your Email Address", htmlBody)
}

func (n *EmailNotifier) VerifySuccess(email string) {
	htmlBody := `
		<p>Hi,</p>
		<p>Your email address has been verified.</p>
		<p>Thank you,</p>
		<p>Jotter Team</p>
	`

	n.send(email, "Email Verified", htmlBody)
}

func (n *EmailNotifier) PasswordReset(email, key string) {
	resetLink := fmt.Sprintf("%s/reset-password?key=%s", n.appBaseURL, key)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>

		<p>Thank you,</p>
		<p>Jotter Team</p>
	`, resetLink, resetLink, n.keyTTL)

	n.send(email, "Password Reset Request", htmlBody)
}

func (n *EmailNotifier) ResetSuccess(email string) {
	htmlBody := `
		<p>Hi,</p>
		<p>Your password has been reset. You can now sign in with your new password.</p>
		<p>Thank you,</p>
		<p>Jotter Team</p>
	`

	n.send(email, "Password Reset Complete", htmlBody)
}

func (n *EmailNotifier) send(to, subject, htmlBody string) {
	if err := n.mailer.SendHTML([]string{to}, subject, htmlBody); err != nil {
		n.logger.Warn().Err(err).Str("subject", subject).Msg("failed to send notification email")
	}
}
