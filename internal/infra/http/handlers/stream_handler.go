package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xavierca1/nesthome-leads/internal/entity"
	"github.com/xavierca1/nesthome-leads/internal/infra/http/middleware"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = 54 * time.Second
)

// LeadSubscriber is the live side of the remote sink.
type LeadSubscriber interface {
	Subscribe(onChange func([]entity.Lead)) (unsubscribe func())
}

// StreamHandler pushes a full lead snapshot over a websocket on every change.
type StreamHandler struct {
	Leads    LeadSubscriber
	Upgrader websocket.Upgrader
	Logger   *slog.Logger
}

type StreamMessage struct {
	Type  string        `json:"type"`
	Leads []entity.Lead `json:"leads"`
}

func NewStreamHandler(leads LeadSubscriber, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		Leads: leads,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		Logger: slog.Default(),
	}
}

func (h *StreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Leads == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "NOT_CONFIGURED", "Live updates are not available")
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.Logger.Warn("lead stream upgrade failed", "error", err)
		return
	}

	middleware.StreamOpened()
	defer middleware.StreamClosed()

	// one-slot mailbox: an unsent snapshot is replaced by the newer one
	snapshots := make(chan []entity.Lead, 1)
	unsubscribe := h.Leads.Subscribe(func(leads []entity.Lead) {
		select {
		case <-snapshots:
		default:
		}
		snapshots <- leads
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go h.readPump(conn, closed)

	h.writePump(conn, snapshots, closed)
}

// readPump discards client frames and only watches for the close.
func (h *StreamHandler) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Warn("lead stream read failed", "error", err)
			}
			return
		}
	}
}

func (h *StreamHandler) writePump(conn *websocket.Conn, snapshots <-chan []entity.Lead, closed <-chan struct{}) {
	ticker := time.NewTicker(streamPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-closed:
			return

		case leads := <-snapshots:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if leads == nil {
				leads = []entity.Lead{}
			}
			if err := conn.WriteJSON(StreamMessage{Type: "snapshot", Leads: leads}); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// originChecker accepts same-origin requests, the configured origins, or anything when
// the list contains "*".
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
