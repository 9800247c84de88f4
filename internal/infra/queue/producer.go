package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/nesthome-leads/internal/entity"
)

// Publisher is satisfied by *amqp.Channel.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// LeadMessage is the body of a lead-created message.
type LeadMessage struct {
	Lead    entity.Lead `json:"lead"`
	Attempt int         `json:"attempt"`
}

type Producer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *Producer {
	return &Producer{Ch: ch}
}

func (p *Producer) PublishLead(ctx context.Context, lead entity.Lead) error {
	body, err := json.Marshal(LeadMessage{Lead: lead, Attempt: 1})
	if err != nil {
		return fmt.Errorf("marshal lead message: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    lead.ID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish lead %s: %w", lead.ID, err)
	}
	return nil
}

// SyncOne hands the lead to the sheets worker. Success means the broker accepted it,
// not that the row reached the sheet.
func (p *Producer) SyncOne(ctx context.Context, lead entity.Lead) error {
	return p.PublishLead(ctx, lead)
}
