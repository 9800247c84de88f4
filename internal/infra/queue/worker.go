package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/nesthome-leads/internal/entity"
)

// SheetWriter appends one lead to the sales sheet.
type SheetWriter interface {
	SyncOne(ctx context.Context, lead entity.Lead) error
}

// Acknowledger is the part of amqp.Delivery the worker settles messages with.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Worker struct {
	Channel *amqp.Channel
	Sheets  SheetWriter
	Logger  *slog.Logger
}

func NewWorker(ch *amqp.Channel, sheets SheetWriter) *Worker {
	return &Worker{
		Channel: ch,
		Sheets:  sheets,
		Logger:  slog.Default().With("worker", "sheets_sync"),
	}
}

// Start consumes queueName until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	if err := w.Channel.Qos(4, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := w.Channel.ConsumeWithContext(ctx, queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queueName, err)
	}

	w.Logger.Info("sheets sync worker waiting", "queue", queueName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consumer channel for %s closed", queueName)
			}
			w.Handle(ctx, d.Body, d.Redelivered, &d)
		}
	}
}

// Handle syncs one message. Malformed bodies go straight to the dead-letter queue; a
// failed sync is requeued once and dead-lettered when the redelivery fails too.
func (w *Worker) Handle(ctx context.Context, body []byte, redelivered bool, ack Acknowledger) {
	var msg LeadMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.Lead.ID == "" {
		w.Logger.Error("malformed lead message", "error", err)
		_ = ack.Nack(false, false)
		return
	}

	if err := w.Sheets.SyncOne(ctx, msg.Lead); err != nil {
		if !redelivered {
			w.Logger.Warn("sheets sync failed, requeueing", "lead_id", msg.Lead.ID, "error", err)
			_ = ack.Nack(false, true)
			return
		}
		w.Logger.Warn("sheets sync failed again, dead-lettering", "lead_id", msg.Lead.ID, "error", err)
		_ = ack.Nack(false, false)
		return
	}

	w.Logger.Debug("lead synced to sheet", "lead_id", msg.Lead.ID)
	_ = ack.Ack(false)
}
