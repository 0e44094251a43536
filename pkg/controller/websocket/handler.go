package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
)

// Handler upgrades board connections and runs the read/write pumps.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The board is served cross-origin during development
				return true
			},
		},
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
)

// HandleBoard handles websocket connections to the board push channel.
func (h *Handler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.From(ctx)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("failed to upgrade connection", "error", err)
		// Upgrader has already written the response
		return
	}

	client := h.hub.NewClient(conn)
	h.hub.Register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// readPump pumps envelopes from the websocket connection into the hub. A
// client may publish board events over its connection; anything else is
// dropped.
func (h *Handler) readPump(client *Client) {
	logger := logging.From(client.ctx)

	defer func() {
		h.hub.Unregister(client)
		if err := client.conn.Close(); err != nil {
			logger.Debug("failed to close connection in readPump", "error", err)
		}
	}()

	client.conn.SetReadLimit(maxMessageSize)
	if err := client.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Error("failed to set read deadline", "error", err)
		return
	}
	client.conn.SetPongHandler(func(string) error {
		if err := client.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		select {
		case <-client.ctx.Done():
			return
		default:
		}

		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("unexpected websocket close", "error", err)
			}
			break
		}

		var env push.Envelope
		if err := env.FromBytes(data); err != nil {
			logger.Warn("invalid push envelope", "error", err)
			continue
		}
		if !env.IsValidEvent() {
			logger.Warn("unknown push event", "event", env.Event)
			continue
		}

		h.hub.Broadcast(client.ctx, &env)
	}
}

// writePump pumps envelopes from the hub to the websocket connection.
func (h *Handler) writePump(client *Client) {
	logger := logging.From(client.ctx)

	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := client.conn.Close(); err != nil {
			logger.Debug("failed to close connection in writePump", "error", err)
		}
	}()

	for {
		select {
		case <-client.ctx.Done():
			return

		case message, ok := <-client.send:
			if err := client.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Error("failed to set write deadline", "error", err)
				return
			}
			if !ok {
				// The hub closed the channel
				if err := client.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logger.Debug("failed to write close message", "error", err)
				}
				return
			}

			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("failed to write message", "error", err)
				return
			}

			// Drain queued messages as separate frames
			n := len(client.send)
			for i := 0; i < n; i++ {
				queued := <-client.send
				if err := client.conn.WriteMessage(websocket.TextMessage, queued); err != nil {
					logger.Error("failed to write queued message", "error", err)
					return
				}
			}

		case <-ticker.C:
			if err := client.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Error("failed to set write deadline for ping", "error", err)
				return
			}
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
