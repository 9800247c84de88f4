package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/xavierca1/nesthome-leads/internal/entity"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

var contactTemplate = template.Must(template.ParseFS(templatesFS, "templates/contact.html"))

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// NewEmailSender relays contact messages from "from" to the sales inbox "to".
func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendContact(msg *entity.ContactMessage) error {
	m, err := s.buildContactMessage(msg)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	return nil
}

func (s *EmailSender) buildContactMessage(msg *entity.ContactMessage) (*gomail.Message, error) {
	data := ContactEmailData{
		Name:       msg.Name,
		Email:      msg.Email,
		Message:    msg.Message,
		ReceivedAt: msg.ReceivedAt.Format(time.RFC1123),
	}

	var body bytes.Buffer
	if err := contactTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("render contact template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Reply-To", m.FormatAddress(msg.Email, msg.Name))
	m.SetHeader("Subject", fmt.Sprintf("New enquiry from %s", msg.Name))
	m.SetBody("text/plain", fmt.Sprintf("%s <%s>\n\n%s", msg.Name, msg.Email, msg.Message))
	m.AddAlternative("text/html", body.String())
	return m, nil
}
