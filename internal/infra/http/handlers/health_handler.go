package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

const (
	depHealthy       = "healthy"
	depConfigured    = "configured"
	depNotConfigured = "not configured"
)

var errConnClosed = errors.New("connection closed")

type HealthHandler struct {
	DB               *sql.DB
	RabbitMQ         *amqp.Connection
	Redis            redis.UniversalClient
	SheetsConfigured bool
	LocalStore       string
	StartTime        time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	LocalStore   string            `json:"localStore,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db *sql.DB, rabbitMQ *amqp.Connection, rdb redis.UniversalClient) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		RabbitMQ:  rabbitMQ,
		Redis:     rdb,
		StartTime: time.Now(),
	}
}

func probe(configured bool, check func() error) string {
	if !configured {
		return depNotConfigured
	}
	if err := check(); err != nil {
		return "unhealthy: " + err.Error()
	}
	return depHealthy
}

// Handle answers 503 only when redis backs the local store and is down: submissions
// cannot succeed without it. Anything else only degrades the status.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{
		"database": probe(h.DB != nil, func() error { return h.DB.PingContext(ctx) }),
		"redis":    probe(h.Redis != nil, func() error { return h.Redis.Ping(ctx).Err() }),
		"rabbitmq": probe(h.RabbitMQ != nil, func() error {
			if h.RabbitMQ.IsClosed() {
				return errConnClosed
			}
			return nil
		}),
		"google_sheets": depNotConfigured,
	}
	if h.SheetsConfigured {
		deps["google_sheets"] = depConfigured
	}

	resp := HealthResponse{
		Status:       depHealthy,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		LocalStore:   h.LocalStore,
		Dependencies: deps,
	}
	for _, state := range deps {
		if state != depHealthy && state != depConfigured && state != depNotConfigured {
			resp.Status = "degraded"
		}
	}

	code := http.StatusOK
	if h.LocalStore == "redis" && deps["redis"] != depHealthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, resp)
}
