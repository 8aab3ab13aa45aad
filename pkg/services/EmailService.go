package services

import (
	"html"
	"html/template"
	"strings"

	"github.com/adampresley/adamgokit/email"
	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/microcosm-cc/bluemonday"
)

type ContactMessage struct {
	Name      string
	Email     string
	Phone     string
	EventType string
	Message   string
}

type EmailServicer interface {
	Enabled() bool
	SendContactMessage(message ContactMessage) error
}

type mailSender interface {
	Send(mail email.Mail) error
}

type EmailServiceConfig struct {
	ApiKey    string
	FromEmail string
	FromName  string
	ToEmail   string
	ToName    string
}

type EmailService struct {
	config    EmailServiceConfig
	policy    *bluemonday.Policy
	sender    mailSender
	enabled   bool
	templates *template.Template
}

const contactEmailTemplate = `
<h1>New message from the portfolio site</h1>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
{{if .EventType}}<p><strong>Event type:</strong> {{.EventType}}</p>{{end}}
<p>{{.Message}}</p>
`

func NewEmailService(config EmailServiceConfig) EmailService {
	result := EmailService{
		config:    config,
		policy:    bluemonday.StrictPolicy(),
		enabled:   config.ApiKey != "" && config.ToEmail != "" && config.FromEmail != "",
		templates: template.Must(template.New("contact").Parse(contactEmailTemplate)),
	}

	if result.enabled {
		result.sender = email.NewResendService(&email.Config{
			ApiKey: config.ApiKey,
		})
	}

	return result
}

func (s EmailService) Enabled() bool {
	return s.enabled
}

/*
SendContactMessage forwards a contact form submission to the studio.
Every field is stripped of markup before it is rendered into the email.
*/
func (s EmailService) SendContactMessage(message ContactMessage) error {
	if !s.enabled {
		return models.ErrEmailNotConfigured
	}

	clean := SanitizeContactMessage(s.policy, message)
	body := strings.Builder{}

	if err := s.templates.Execute(&body, clean); err != nil {
		return err
	}

	return s.sender.Send(email.Mail{
		Body:       body.String(),
		BodyIsHtml: true,
		From: email.EmailAddress{
			Email: s.config.FromEmail,
			Name:  s.config.FromName,
		},
		Subject: "Contact from " + clean.Name,
		To: []email.EmailAddress{
			{Name: s.config.ToName, Email: s.config.ToEmail},
		},
	})
}

/*
SanitizeContactMessage removes all markup from a message. Entities are
unescaped again since the email template escapes its values.
*/
func SanitizeContactMessage(policy *bluemonday.Policy, message ContactMessage) ContactMessage {
	clean := func(s string) string {
		return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
	}

	return ContactMessage{
		Name:      clean(message.Name),
		Email:     clean(message.Email),
		Phone:     clean(message.Phone),
		EventType: clean(message.EventType),
		Message:   clean(message.Message),
	}
}
