package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

type SendContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// SendContactUseCase relays contact-page messages by mail. Delivery is best-effort: a
// mail failure is reported in the output, not as an error.
type SendContactUseCase struct {
	Mailer ContactMailer
	Now    func() time.Time
	Logger *slog.Logger
}

func NewSendContactUseCase(mailer ContactMailer) *SendContactUseCase {
	return &SendContactUseCase{
		Mailer: mailer,
		Now:    time.Now,
		Logger: slog.Default(),
	}
}

func (uc *SendContactUseCase) Execute(ctx context.Context, input SendContactInput) (*ContactOutput, error) {
	msg, err := entity.NewContactMessage(input.Name, input.Email, input.Message, uc.Now())
	if err != nil {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: err.Error()}
	}

	if uc.Mailer == nil {
		uc.Logger.Warn("contact message received without a configured mailer", "email", msg.Email)
		return &ContactOutput{EmailSent: false}, nil
	}

	if err := uc.Mailer.SendContact(msg); err != nil {
		uc.Logger.ErrorContext(ctx, "failed to send contact email", "email", msg.Email, "error", err)
		return &ContactOutput{EmailSent: false}, nil
	}

	return &ContactOutput{EmailSent: true}, nil
}
