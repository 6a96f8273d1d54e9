package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"go-resume-backend/config"
)

// EmailService sends transactional notifications via SMTP.
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
}

// ShareLinkData holds the data for share-link notification emails
type ShareLinkData struct {
	RecipientName string
	ShareURL      string
	Visibility    string
}

// NewEmailService creates a new email service from SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
	}
}

// IsConfigured reports whether SMTP credentials are present.
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

const shareLinkTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your resume share link</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2563eb; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .link-box { background: white; padding: 15px; border-left: 4px solid #2563eb; margin-top: 10px; word-break: break-all; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>Resume share link generated</h2></div>
        <div class="content">
            <p>Hi {{.RecipientName}},</p>
            <p>A new share link was generated for your resume with
               <strong>{{.Visibility}}</strong> visibility. Any previous link is
               no longer valid.</p>
            <div class="link-box"><a href="{{.ShareURL}}">{{.ShareURL}}</a></div>
        </div>
        <div class="footer">You received this email because a share link was requested for your account.</div>
    </div>
</body>
</html>`

var shareTmpl = template.Must(template.New("share_link").Parse(shareLinkTemplate))

// SendShareLink emails the freshly issued share URL to the resume owner.
func (s *EmailService) SendShareLink(to string, data ShareLinkData) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email service not configured")
	}

	var body bytes.Buffer
	if err := shareTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render share link email: %w", err)
	}

	msg := bytes.Buffer{}
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.fromEmail))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString("Subject: Your resume share link\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := s.host + ":" + s.port
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg.Bytes())
}
