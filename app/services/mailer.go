package services

import (
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/Rakhulsr/go-tours/app/configs"
	"github.com/rs/zerolog/log"
)

// EmailSender is what the password-reset flow needs from a mail transport.
type EmailSender interface {
	SendHTMLEmail(to, subject, htmlBody string) error
}

type MailerConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func MailerConfigFromEnv(env configs.ENV) MailerConfig {
	return MailerConfig{
		Host:     env.EmailHost,
		Port:     env.EmailPort,
		Username: env.EmailUsername,
		Password: env.EmailPassword,
		From:     env.EmailFrom,
	}
}

type Mailer struct {
	config MailerConfig
}

func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{config: cfg}
}

func (m *Mailer) SendHTMLEmail(to, subject, htmlBody string) error {
	headers := [][2]string{
		{"From", m.config.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=\"UTF-8\""},
	}

	var msg strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n" + htmlBody)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(msg.String())); err != nil {
		log.Error().Err(err).Str("to", to).Msg("failed to send email")
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

var resetEmailTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Your password reset token</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 20px auto; padding: 20px; border: 1px solid #ddd; border-radius: 5px; }
        .button { display: inline-block; padding: 10px 20px; background-color: #55c57a; color: #fff; border-radius: 5px; text-decoration: none; }
        .footer { font-size: 0.8em; color: #777; text-align: center; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <p>Hi {{.Name}},</p>
        <p>Forgot your password? Submit a PATCH request with your new password and passwordConfirm to:</p>
        <p><a class="button" href="{{.URL}}">{{.URL}}</a></p>
        <p>This link is valid for {{.Minutes}} minutes. If you didn't forget your password, please ignore this email.</p>
        <div class="footer"><p>Natours</p></div>
    </div>
</body>
</html>`))

func BuildResetEmailBody(name, resetURL string, expiryMinutes int) (string, error) {
	var b strings.Builder
	err := resetEmailTemplate.Execute(&b, struct {
		Name    string
		URL     string
		Minutes int
	}{Name: firstName(name), URL: resetURL, Minutes: expiryMinutes})
	if err != nil {
		return "", fmt.Errorf("render reset email: %w", err)
	}
	return b.String(), nil
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
