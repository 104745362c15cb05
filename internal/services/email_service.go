package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"chats/internal/config"
)

type EmailService interface {
	SendWelcomeEmail(email, username string) error
}

type emailService struct {
	dialer  *gomail.Dialer
	from    string
	appName string
}

// NewEmailService returns a no-op sender when no SMTP host is configured.
func NewEmailService(cfg config.EmailConfig, appName string) EmailService {
	if cfg.SMTPHost == "" {
		return noopEmailService{}
	}
	return &emailService{
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:    cfg.FromEmail,
		appName: appName,
	}
}

func (s *emailService) SendWelcomeEmail(email, username string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Welcome to %s!", s.appName))

	m.SetBody("text/html", welcomeBody(s.appName, username))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

// welcomeBody escapes user input, usernames are free text.
func welcomeBody(appName, username string) string {
	return fmt.Sprintf(`
		<h2>Welcome to %s, %s!</h2>
		<p>Your account has been created. Sign in and start chatting.</p>
	`, html.EscapeString(appName), html.EscapeString(username))
}

type noopEmailService struct{}

func (noopEmailService) SendWelcomeEmail(string, string) error { return nil }
