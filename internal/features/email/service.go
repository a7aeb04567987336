package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"path/filepath"
	"strings"

	"eduvibe/internal/config"
	"eduvibe/internal/features/access"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SendFunc matches smtp.SendMail so tests can capture outgoing messages.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService interface {
	SendEmail(ctx context.Context, to []string, subject, body string) error
	SendEmailWithAttachment(ctx context.Context, to []string, subject, body string, attachment Attachment) error
	SendTemplate(ctx context.Context, to []string, name TemplateName, data interface{}, attachments ...Attachment) error
	SendWelcome(ctx context.Context, to, name string, role access.Role) error
	Enabled() bool
}

type EmailServiceImpl struct {
	Config config.SMTPConfig
	Repo   EmailStore
	Send   SendFunc
	Logger *zap.Logger
}

func NewEmailService(cfg *config.Config, repo *EmailRepository, logger *zap.Logger) EmailService {
	if cfg.SMTP.Host == "" {
		logger.Info("smtp disabled, outgoing email is logged only")
	}
	return &EmailServiceImpl{
		Config: cfg.SMTP,
		Repo:   repo,
		Send:   smtp.SendMail,
		Logger: logger,
	}
}

func (s *EmailServiceImpl) Enabled() bool {
	return s.Config.Host != ""
}

func (s *EmailServiceImpl) SendEmail(ctx context.Context, to []string, subject, body string) error {
	return s.deliver(ctx, &Email{To: to, Subject: subject, HtmlBody: body}, nil)
}

func (s *EmailServiceImpl) SendEmailWithAttachment(ctx context.Context, to []string, subject, body string, attachment Attachment) error {
	return s.deliver(ctx, &Email{To: to, Subject: subject, HtmlBody: body}, []Attachment{attachment})
}

func (s *EmailServiceImpl) SendTemplate(ctx context.Context, to []string, name TemplateName, data interface{}, attachments ...Attachment) error {
	subject, body, err := Render(name, data)
	if err != nil {
		return err
	}
	return s.deliver(ctx, &Email{To: to, Subject: subject, HtmlBody: body, Template: name}, attachments)
}

func (s *EmailServiceImpl) SendWelcome(ctx context.Context, to, name string, role access.Role) error {
	return s.SendTemplate(ctx, []string{to}, TemplateWelcome, WelcomeData{Name: name, IsMentor: role == access.RoleMentor})
}

func (s *EmailServiceImpl) deliver(ctx context.Context, email *Email, attachments []Attachment) error {
	if len(email.To) == 0 {
		return errors.New("recipient required")
	}

	if !s.Enabled() {
		s.Logger.Debug("email skipped, smtp disabled",
			zap.Strings("to", email.To),
			zap.String("subject", email.Subject),
		)
		return nil
	}

	email.From = s.Config.FromEmail
	if email.From == "" {
		email.From = s.Config.User
	}
	email.Status = EmailQueued
	if len(attachments) > 0 {
		email.Attachment = attachments[0].Name
	}

	if s.Repo != nil {
		if err := s.Repo.Create(ctx, email); err != nil {
			s.Logger.Warn("failed to record email", zap.Error(err))
		}
	}

	msg := buildMessage(s.fromHeader(email.From), email, attachments)

	var auth smtp.Auth
	if s.Config.User != "" {
		auth = smtp.PlainAuth("", s.Config.User, s.Config.Password, s.Config.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)

	s.Logger.Debug("sending email", zap.Strings("to", email.To), zap.String("addr", addr))
	err := s.Send(addr, auth, email.From, email.To, msg)

	status, errMsg := EmailSent, ""
	if err != nil {
		status, errMsg = EmailFailed, err.Error()
	}
	if s.Repo != nil && !email.ID.IsZero() {
		if uerr := s.Repo.UpdateStatus(ctx, email.ID, status, errMsg); uerr != nil {
			s.Logger.Warn("failed to update email status", zap.Error(uerr))
		}
	}

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.Logger.Info("email sent", zap.Strings("to", email.To), zap.String("template", string(email.Template)))
	return nil
}

func (s *EmailServiceImpl) fromHeader(addr string) string {
	if s.Config.FromName == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.Config.FromName), addr)
}

func buildMessage(from string, email *Email, attachments []Attachment) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if len(attachments) == 0 {
		buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		buf.WriteString(email.HtmlBody)
		return buf.Bytes()
	}

	marker := "eduvibe-" + uuid.NewString()
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n\r\n", marker))

	buf.WriteString(fmt.Sprintf("--%s\r\n", marker))
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	buf.WriteString(email.HtmlBody)
	buf.WriteString("\r\n")

	for _, a := range attachments {
		contentType := mime.TypeByExtension(filepath.Ext(a.Name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		buf.WriteString(fmt.Sprintf("--%s\r\n", marker))
		buf.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", contentType, a.Name))
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", a.Name))

		encoded := base64.StdEncoding.EncodeToString(a.Data)
		for len(encoded) > 76 {
			buf.WriteString(encoded[:76] + "\r\n")
			encoded = encoded[76:]
		}
		buf.WriteString(encoded + "\r\n")
	}

	buf.WriteString(fmt.Sprintf("--%s--", marker))
	return buf.Bytes()
}
