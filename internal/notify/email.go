package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"incident-service/config"
)

// SmtpEmailSender delivers mail over plain SMTP. sendMail is a seam for
// tests; it defaults to smtp.SendMail.
type SmtpEmailSender struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	fromName  string
	dir       Directory
	logger    *zap.SugaredLogger
	sendMail  func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSmtpEmailSender(cfg *config.Config, dir Directory, logger *zap.SugaredLogger) *SmtpEmailSender {
	return &SmtpEmailSender{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUser,
		password:  cfg.SMTPPass,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		dir:       dir,
		logger:    logger,
		sendMail:  smtp.SendMail,
	}
}

func (s *SmtpEmailSender) Send(_ context.Context, msg EmailMessage) bool {
	var auth smtp.Auth
	if s.username != "" && s.password != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	if err := s.sendMail(addr, auth, s.fromEmail, []string{msg.To}, s.buildMessage(msg)); err != nil {
		s.logger.Errorw("Failed to send email", "to", msg.To, "subject", msg.Subject, "error", err)
		return false
	}

	s.logger.Infow("Sent email", "to", msg.To, "subject", msg.Subject)
	return true
}

func (s *SmtpEmailSender) SendToUser(ctx context.Context, userID, subject, body string, isHTML bool) bool {
	user, err := s.dir.UserByID(ctx, userID)
	if err != nil {
		s.logger.Errorw("Failed to resolve user for email", "user_id", userID, "error", err)
		return false
	}
	if user == nil || user.Email == "" {
		s.logger.Warnw("User not found or has no email address", "user_id", userID)
		return false
	}

	return s.Send(ctx, EmailMessage{To: user.Email, Subject: subject, Body: body, IsHTML: isHTML})
}

// SendToTeam mails every member with an email address and succeeds only if
// every delivery succeeded.
func (s *SmtpEmailSender) SendToTeam(ctx context.Context, teamID, subject, body string, isHTML bool) bool {
	members, err := s.dir.TeamMembers(ctx, teamID)
	if err != nil {
		s.logger.Errorw("Failed to resolve team for email", "team_id", teamID, "error", err)
		return false
	}

	recipients := make([]string, 0, len(members))
	for _, m := range members {
		if m.Email != "" {
			recipients = append(recipients, m.Email)
		}
	}
	if len(recipients) == 0 {
		s.logger.Warnw("No team members with email addresses", "team_id", teamID)
		return false
	}

	results := fanOut(len(recipients), func(i int) bool {
		return s.Send(ctx, EmailMessage{To: recipients[i], Subject: subject, Body: body, IsHTML: isHTML})
	})
	return allOf(results)
}

func (s *SmtpEmailSender) buildMessage(msg EmailMessage) []byte {
	contentType := "text/plain"
	if msg.IsHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.fromName, s.fromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// MockEmailSender stands in when the email feature flag is off.
type MockEmailSender struct {
	logger *zap.SugaredLogger
}

func NewMockEmailSender(logger *zap.SugaredLogger) *MockEmailSender {
	return &MockEmailSender{logger: logger}
}

func (s *MockEmailSender) Send(_ context.Context, msg EmailMessage) bool {
	s.logger.Infow("[MOCK EMAIL] Would send email", "to", msg.To, "subject", msg.Subject)
	return true
}

func (s *MockEmailSender) SendToUser(_ context.Context, userID, subject, _ string, _ bool) bool {
	s.logger.Infow("[MOCK EMAIL] Would send email to user", "user_id", userID, "subject", subject)
	return true
}

func (s *MockEmailSender) SendToTeam(_ context.Context, teamID, subject, _ string, _ bool) bool {
	s.logger.Infow("[MOCK EMAIL] Would send email to team", "team_id", teamID, "subject", subject)
	return true
}
