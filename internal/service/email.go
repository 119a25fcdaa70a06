package service

import (
	"fmt"
	"log"
	"net/smtp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/models"
)

// EmailService sends transactional mail over SMTP. When SMTP is not
// configured it logs the message instead, which keeps local development
// working without a mail server.
type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	frontendURL  string
}

var _ IEmailService = (*EmailService)(nil)

// NewEmailService creates a new EmailService instance
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.EmailFrom,
		frontendURL:  cfg.FrontendURL,
	}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	if s.smtpHost == "" || s.smtpPort == "" {
		log.Printf("SMTP not configured, logging email instead: to=%s subject=%q", to, subject)
		return nil
	}

	// Anonymous relays (mailhog and friends) reject PLAIN auth, so only
	// authenticate when credentials are present.
	var auth smtp.Auth
	if s.smtpUsername != "" {
		auth = smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	}

	from := fmt.Sprintf("Plateful <%s>", s.fromEmail)
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, from, subject, body))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendReminderEmail delivers a reminder to users without any registered push
// device. The kind is one of the reminder kinds (breakfast, lunch, dinner,
// water, sleep).
func (s *EmailService) SendReminderEmail(user *models.User, kind, message string) error {
	caser := cases.Title(language.English)
	subject := fmt.Sprintf("[Plateful] %s reminder", caser.String(kind))
	body := s.buildReminderEmailBody(user, caser.String(kind), message)
	return s.SendEmail(user.Email, subject, body)
}

func (s *EmailService) SendWelcomeEmail(user *models.User) error {
	subject := "Welcome to Plateful!"
	body := s.buildWelcomeEmailBody(user)
	return s.SendEmail(user.Email, subject, body)
}

func (s *EmailService) buildReminderEmailBody(user *models.User, kind, message string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>%s Reminder - Plateful</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background-color: #2E7D32; color: white; padding: 20px; text-align: center; border-radius: 10px 10px 0 0;">
		<h1 style="margin: 0; font-size: 28px;">🥗 Plateful</h1>
	</div>

	<div style="background-color: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
		<h2 style="color: #2E7D32; margin-top: 0;">Hi %s,</h2>
		<p>%s</p>

		<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd;">
			<p style="color: #666; font-size: 12px; margin: 0;">
				You are receiving this because reminders are enabled in your notification settings.
				You can change your reminder times or turn them off at <a href="%s/settings">%s/settings</a>.
			</p>
		</div>
	</div>
</body>
</html>
	`, kind, user.Name, message, s.frontendURL, s.frontendURL)
}

func (s *EmailService) buildWelcomeEmailBody(user *models.User) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Welcome to Plateful!</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background-color: #2E7D32; color: white; padding: 20px; text-align: center; border-radius: 10px 10px 0 0;">
		<h1 style="margin: 0; font-size: 28px;">🥗 Welcome to Plateful!</h1>
		<p style="margin: 10px 0 0 0; font-size: 16px;">Eat well, on time, every day</p>
	</div>

	<div style="background-color: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
		<h2 style="color: #2E7D32; margin-top: 0;">Hello %s!</h2>
		<p>Your account is ready. Here is what you can set up next:</p>

		<ul style="padding-left: 20px;">
			<li style="margin-bottom: 10px;"><strong>Meal reminders:</strong> pick your breakfast, lunch and dinner times and we will nudge you in your own timezone</li>
			<li style="margin-bottom: 10px;"><strong>Water reminders:</strong> a fixed daily time or a steady interval through your waking hours</li>
			<li style="margin-bottom: 10px;"><strong>Meal ideas:</strong> describe what you are craving and get a suggestion that fits your dietary profile</li>
		</ul>

		<div style="text-align: center; margin: 30px 0;">
			<a href="%s" style="background-color: #2E7D32; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; font-weight: bold; font-size: 16px; display: inline-block;">
				Open Plateful
			</a>
		</div>

		<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd;">
			<p style="color: #666; font-size: 12px; margin: 0;">
				The Plateful Team
			</p>
		</div>
	</div>
</body>
</html>
	`, user.Name, s.frontendURL)
}
