// Package mail envía los correos transaccionales (verificación de email).
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/sjpos/pos-api/internal/application/auth"
	"github.com/sjpos/pos-api/pkg/config"
)

var (
	_ auth.Mailer = (*SMTPMailer)(nil)
	_ auth.Mailer = (*LogMailer)(nil)
)

var verifyTemplate = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #222;">
  <h2 style="color: #00467f;">{{.AppName}}</h2>
  <p>Hi {{.Firstname}},</p>
  <p>Thanks for signing up. Confirm your email address to activate your cashier account:</p>
  <p><a href="{{.Link}}" style="background: #00467f; color: #fff; padding: 10px 18px; text-decoration: none; border-radius: 4px;">Verify email</a></p>
  <p style="color: #666; font-size: 12px;">The link expires in 20 minutes. If you did not create an account, ignore this message.</p>
</body>
</html>`))

// VerificationLink arma el enlace que el cliente web usa para verificar el email.
func VerificationLink(clientURL, email, token string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return clientURL + "/verify-email?" + q.Encode()
}

func renderVerification(appName, firstname, link string) (string, error) {
	var buf bytes.Buffer
	err := verifyTemplate.Execute(&buf, struct {
		AppName, Firstname, Link string
	}{appName, firstname, link})
	if err != nil {
		return "", fmt.Errorf("mail: render template: %w", err)
	}
	return buf.String(), nil
}

// SMTPMailer envía por SMTP con gomail.
type SMTPMailer struct {
	dialer    *gomail.Dialer
	from      string
	clientURL string
	appName   string
}

// NewSMTPMailer construye el mailer con los datos SMTP de la configuración.
func NewSMTPMailer(cfg config.MailConfig, appName string) *SMTPMailer {
	return &SMTPMailer{
		dialer:    gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:      cfg.From,
		clientURL: cfg.ClientURL,
		appName:   appName,
	}
}

// SendVerificationEmail envía el enlace de verificación.
func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, firstname, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := renderVerification(m.appName, firstname, VerificationLink(m.clientURL, to, token))
	if err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Verify your email - "+m.appName)
	msg.SetBody("text/html", body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

// LogMailer escribe el enlace en el log en vez de enviarlo (desarrollo sin SMTP).
type LogMailer struct {
	log       zerolog.Logger
	clientURL string
}

// NewLogMailer construye el mailer de desarrollo.
func NewLogMailer(log zerolog.Logger, clientURL string) *LogMailer {
	return &LogMailer{log: log, clientURL: clientURL}
}

// SendVerificationEmail registra el enlace de verificación.
func (m *LogMailer) SendVerificationEmail(_ context.Context, to, firstname, token string) error {
	m.log.Info().
		Str("to", to).
		Str("firstname", firstname).
		Str("link", VerificationLink(m.clientURL, to, token)).
		Msg("email de verificación (SMTP no configurado)")
	return nil
}

// New elige SMTP si hay host configurado y LogMailer si no.
func New(cfg config.MailConfig, appName string, log zerolog.Logger) auth.Mailer {
	if cfg.SMTPHost == "" {
		return NewLogMailer(log, cfg.ClientURL)
	}
	return NewSMTPMailer(cfg, appName)
}
