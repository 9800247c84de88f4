package entity

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const maxContactMessageLength = 5000

// ContactMessage is a free-form inquiry from the public contact page.
type ContactMessage struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

func NewContactMessage(name, email, message string, now time.Time) (*ContactMessage, error) {
	msg := &ContactMessage{
		Name:       strings.TrimSpace(name),
		Email:      strings.TrimSpace(email),
		Message:    strings.TrimSpace(message),
		ReceivedAt: now,
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	return msg, nil
}

func (c *ContactMessage) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.Email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return errors.New("email is invalid")
	}
	if c.Message == "" {
		return errors.New("message is required")
	}
	if len([]rune(c.Message)) > maxContactMessageLength {
		return errors.New("message is too long")
	}
	return nil
}
