package services

import (
	"context"
	"fmt"
	"html"

	"app-builder-api/internal/apperrors"
	"app-builder-api/pkg/logging"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// Message is one outbound email
type Message struct {
	To          string
	Subject     string
	HTMLContent string
	TextContent string
}

// Mailer delivers a single message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// BrevoMailer sends transactional email through the Brevo API
type BrevoMailer struct {
	client    *brevo.APIClient
	fromEmail string
	fromName  string
}

// NewBrevoMailer creates a new Brevo mailer
func NewBrevoMailer(apiKey, fromEmail, fromName string) *BrevoMailer {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)

	return &BrevoMailer{
		client:    brevo.NewAPIClient(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// Send sends msg via Brevo
func (m *BrevoMailer) Send(ctx context.Context, msg Message) error {
	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  m.fromName,
			Email: m.fromEmail,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: msg.To},
		},
		Subject:     msg.Subject,
		HtmlContent: msg.HTMLContent,
		TextContent: msg.TextContent,
	}

	result, _, err := m.client.TransactionalEmailsApi.SendTransacEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: brevo send to %s: %v", apperrors.ErrNotification, msg.To, err)
	}

	logging.Debugf("Brevo accepted email - to: %s, message_id: %s", msg.To, result.MessageId)
	return nil
}

// LogMailer only logs messages, used when no Brevo key is configured
type LogMailer struct{}

// Send logs msg
func (LogMailer) Send(ctx context.Context, msg Message) error {
	logging.Infof("Email (not sent, no mail provider configured) - to: %s, subject: %s", msg.To, msg.Subject)
	return nil
}

// APKReadyEmail builds the message sent after a submission
func APKReadyEmail(to, appName, packageName, downloadURL string) Message {
	name := displayName(appName, packageName)
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your APK for %s is ready", name),
		HTMLContent: fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2 style="color: #333;">%s build is ready</h2>
	<p style="color: #666;">Your test APK for <b>%s</b> has been generated.</p>
	<p><a href="%s" style="background-color: #007bff; color: white; padding: 12px 20px; border-radius: 6px; text-decoration: none;">Download APK</a></p>
	<p style="color: #999; font-size: 12px;">Complete the payment to receive the Play Store AAB bundle.</p>
</body>
</html>`, html.EscapeString(name), html.EscapeString(packageName), html.EscapeString(downloadURL)),
		TextContent: fmt.Sprintf("%s build is ready\n\nDownload APK: %s\n\nComplete the payment to receive the Play Store AAB bundle.\n",
			name, downloadURL),
	}
}

// AABReadyEmail builds the message sent after a verified payment
func AABReadyEmail(to, appName, packageName, downloadURL string) Message {
	name := displayName(appName, packageName)
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Payment received - your AAB for %s is ready", name),
		HTMLContent: fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2 style="color: #333;">Thank you for your payment</h2>
	<p style="color: #666;">The Play Store bundle for <b>%s</b> (%s) is ready.</p>
	<p><a href="%s" style="background-color: #28a745; color: white; padding: 12px 20px; border-radius: 6px; text-decoration: none;">Download AAB</a></p>
</body>
</html>`, html.EscapeString(name), html.EscapeString(packageName), html.EscapeString(downloadURL)),
		TextContent: fmt.Sprintf("Thank you for your payment\n\nDownload AAB for %s: %s\n", name, downloadURL),
	}
}

func displayName(appName, packageName string) string {
	if appName != "" {
		return appName
	}
	return packageName
}
