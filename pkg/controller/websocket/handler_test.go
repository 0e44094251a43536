package websocket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/gt"

	websocket_ctrl "github.com/campus-lab/campusboard/pkg/controller/websocket"
	"github.com/campus-lab/campusboard/pkg/domain/model/push"
)

func setupBoardServer(t *testing.T) (*websocket_ctrl.Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	hub := websocket_ctrl.NewHub(ctx)
	go hub.Run()

	handler := websocket_ctrl.NewHandler(hub)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/board", handler.HandleBoard)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		_ = hub.Close()
		cancel()
	})

	return hub, server, cancel
}

func dialBoard(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(server.URL, "http", "ws", 1) + "/ws/board"
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, resp.StatusCode).Equal(http.StatusSwitchingProtocols)
	return ws
}

func TestHandler_BroadcastReachesClient(t *testing.T) {
	hub, server, _ := setupBoardServer(t)

	ws := dialBoard(t, server)
	defer ws.Close()

	// Wait for the hub to register the connection
	waitClients(t, hub, 1)

	hub.Broadcast(context.Background(), deleteEnvelope(t, push.NoticeDelete, "n-removed"))

	gt.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env push.Envelope
	gt.NoError(t, ws.ReadJSON(&env)).Required()
	gt.Value(t, env.Event).Equal(push.NoticeDelete)
	gt.Value(t, env.Seq).Equal(uint64(1))
}

func TestHandler_ClientPublishRebroadcasts(t *testing.T) {
	hub, server, _ := setupBoardServer(t)

	sender := dialBoard(t, server)
	defer sender.Close()
	receiver := dialBoard(t, server)
	defer receiver.Close()

	waitClients(t, hub, 2)

	gt.NoError(t, sender.WriteJSON(deleteEnvelope(t, push.EventDelete, "e-removed")))

	// Both connections get the event, the sender included
	for _, ws := range []*websocket.Conn{receiver, sender} {
		gt.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
		var env push.Envelope
		gt.NoError(t, ws.ReadJSON(&env)).Required()
		gt.Value(t, env.Event).Equal(push.EventDelete)
	}

	// The published event also lands in the polling backlog
	cursor, _ := hub.Backlog(0)
	gt.Value(t, cursor).Equal(uint64(1))
}

func TestHandler_InvalidMessagesDropped(t *testing.T) {
	hub, server, _ := setupBoardServer(t)

	ws := dialBoard(t, server)
	defer ws.Close()
	waitClients(t, hub, 1)

	// Neither malformed JSON nor unknown events reach the board
	gt.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	gt.NoError(t, ws.WriteJSON(map[string]string{"event": "notice:explode"}))

	time.Sleep(50 * time.Millisecond)
	cursor, _ := hub.Backlog(0)
	gt.Value(t, cursor).Equal(uint64(0))

	// The connection survives and still delivers real events
	hub.Broadcast(context.Background(), deleteEnvelope(t, push.NoticeDelete, "n1"))
	gt.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env push.Envelope
	gt.NoError(t, ws.ReadJSON(&env)).Required()
	gt.Value(t, env.Event).Equal(push.NoticeDelete)
}

func TestHandler_DisconnectUnregisters(t *testing.T) {
	hub, server, _ := setupBoardServer(t)

	ws := dialBoard(t, server)
	waitClients(t, hub, 1)

	gt.NoError(t, ws.Close())
	waitClients(t, hub, 0)
}

func waitClients(t *testing.T, hub *websocket_ctrl.Hub, want int) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d (now %d)", want, hub.ClientCount())
}
