package service

import (
	"errors"
	"fmt"
	"html"

	"economic/config"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled is returned when SMTP is not configured.
var ErrEmailDisabled = errors.New("email service is disabled, set ECONOMIC_EMAIL_ENABLED=true")

// EmailService sends account mail over SMTP.
type EmailService struct {
	cfg    *config.EmailConfig
	sender func(m *gomail.Message) error
}

// NewEmailService creates the email service.
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{cfg: cfg}
	s.sender = s.dialAndSend
	return s
}

// Enabled reports whether mail can be sent.
func (s *EmailService) Enabled() bool {
	return s.cfg != nil && s.cfg.Enabled
}

// SendWelcomeEmail greets a newly registered user.
func (s *EmailService) SendWelcomeEmail(toEmail, name, dashboardURL string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}
	return s.sendEmail(toEmail, "Welcome to Economic", s.generateWelcomeEmailBody(name, dashboardURL))
}

// SendTestEmail checks the SMTP configuration.
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}
	body := `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>Email configuration works</h2>
    <p>If you received this message the mail settings are correct.</p>
</body>
</html>
`
	return s.sendEmail(toEmail, "Economic mail test", body)
}

func (s *EmailService) generateWelcomeEmailBody(name, dashboardURL string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; }
        .header { background: #1d4ed8; color: white; padding: 30px; text-align: center; }
        .content { padding: 40px 30px; color: #333; line-height: 1.8; }
        .btn { display: inline-block; background: #1d4ed8; color: white !important; text-decoration: none; padding: 14px 40px; border-radius: 8px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>Economic</h1></div>
        <div class="content">
            <p>Hi <strong>%s</strong>,</p>
            <p>Your account is ready. We created two starter categories for you so you can record income and expenses right away.</p>
            <p style="text-align: center;"><a href="%s" class="btn">Open your dashboard</a></p>
        </div>
        <div class="footer"><p>This message was sent automatically, please do not reply.</p></div>
    </div>
</body>
</html>
`, html.EscapeString(name), html.EscapeString(dashboardURL))
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.sender(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (s *EmailService) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
