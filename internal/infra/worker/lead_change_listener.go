package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

const LeadsChannel = "leads_changed"

// Refresher reloads the lead collection and publishes it to live subscribers.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Notifications is the slice of *pq.Listener the worker needs.
type Notifications interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// LeadChangeListener turns Postgres NOTIFY events on the leads table into snapshot
// refreshes. A burst of notifications collapses into one reload.
type LeadChangeListener struct {
	listener     Notifications
	refresher    Refresher
	pingInterval time.Duration
	logger       *slog.Logger
}

func NewLeadChangeListener(listener Notifications, refresher Refresher) *LeadChangeListener {
	return &LeadChangeListener{
		listener:     listener,
		refresher:    refresher,
		pingInterval: 90 * time.Second,
		logger:       slog.Default().With("worker", "lead_change_listener"),
	}
}

// NewPQListener opens a reconnecting lib/pq listener on dsn.
func NewPQListener(dsn string, logger *slog.Logger) *pq.Listener {
	return pq.NewListener(dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			logger.Warn("lead listener connection problem", "event", ev, "error", err)
		case pq.ListenerEventReconnected:
			logger.Info("lead listener reconnected")
		}
	})
}

func (w *LeadChangeListener) Start(ctx context.Context) error {
	if err := w.listener.Listen(LeadsChannel); err != nil {
		return fmt.Errorf("listen %s: %w", LeadsChannel, err)
	}
	defer w.listener.Close()

	w.logger.Info("lead change listener started", "channel", LeadsChannel)
	w.refresh(ctx)

	ping := time.NewTicker(w.pingInterval)
	defer ping.Stop()

	notifications := w.listener.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("lead change listener stopped")
			return nil
		case n := <-notifications:
			// nil means the connection was re-established and events may have been missed
			if n == nil {
				w.logger.Debug("reloading leads after reconnect")
			}
			w.drain(notifications)
			w.refresh(ctx)
		case <-ping.C:
			go func() {
				if err := w.listener.Ping(); err != nil {
					w.logger.Warn("lead listener ping failed", "error", err)
				}
			}()
		}
	}
}

func (w *LeadChangeListener) drain(ch <-chan *pq.Notification) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func (w *LeadChangeListener) refresh(ctx context.Context) {
	if err := w.refresher.Refresh(ctx); err != nil {
		w.logger.Error("failed to reload leads", "error", err)
	}
}
