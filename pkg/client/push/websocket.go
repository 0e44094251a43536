package push

import (
	"strings"
	"time"

	"github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
	"github.com/gorilla/websocket"
	"github.com/m-mizutani/goerr/v2"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	// Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
)

// wsURL converts the service base URL into the websocket endpoint.
func (c *Conn) wsURL() string {
	url := c.baseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + "/ws/board"
}

// runWebSocket holds one websocket session. It returns whether the dial
// succeeded, so the manager can distinguish a failed dial (try the next
// transport) from a dropped session (reconnect from the top).
func (c *Conn) runWebSocket() (bool, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, resp, err := dialer.DialContext(c.ctx, c.wsURL(), c.opts.Header)
	if err != nil {
		return false, goerr.Wrap(err, "websocket dial failed", goerr.V("url", c.wsURL()))
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	c.connected.Store(true)
	defer func() {
		c.connected.Store(false)
		_ = ws.Close()
	}()

	logging.From(c.ctx).Debug("push channel connected", "transport", TransportWebSocket)

	// Writer: outbound emits plus ping keepalive.
	writeErr := make(chan error, 1)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-c.ctx.Done():
				writeErr <- nil
				return
			case env := <-c.send:
				data, err := env.ToBytes()
				if err != nil {
					continue
				}
				_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
				if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
					writeErr <- err
					return
				}
			case <-ticker.C:
				_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
				if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			var env push.Envelope
			if err := env.FromBytes(data); err != nil {
				logging.From(c.ctx).Warn("dropping malformed push message", "error", err)
				continue
			}
			c.dispatch(&env)
		}
	}()

	select {
	case <-c.ctx.Done():
		return true, nil
	case err := <-writeErr:
		return true, err
	case err := <-readErr:
		return true, err
	}
}
