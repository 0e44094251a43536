package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/campus-lab/campusboard/pkg/domain/interfaces"
	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
)

// Hub maintains the set of connected board clients and fans push envelopes
// out to all of them. Every envelope is also kept in a bounded backlog so the
// polling transport can replay events it missed between requests.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *push.Envelope

	// backlog is a ring of the most recent envelopes, ordered by Seq.
	// seq is the number assigned to the latest broadcast envelope.
	backlog []*push.Envelope
	seq     uint64

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

// Client is a middleman between a websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	// Mutex to protect send channel
	mu sync.Mutex
}

const (
	// Maximum message size allowed from peer (64KB)
	maxMessageSize = 64 * 1024

	// Buffer size for client send channel
	clientSendBufferSize = 256

	// Number of envelopes kept for polling replay
	backlogSize = 256
)

var _ interfaces.BoardNotifier = &Hub{}

func NewHub(ctx context.Context) *Hub {
	ctx, cancel := context.WithCancel(ctx)
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *push.Envelope, clientSendBufferSize),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	logger := logging.From(h.ctx)
	logger.Info("board hub started")

	defer func() {
		logger.Info("board hub stopped")
		h.cancel()
	}()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.broadcast:
			h.broadcastEnvelope(env)
		}
	}
}

// Broadcast implements interfaces.BoardNotifier. It never blocks past hub
// shutdown.
func (h *Hub) Broadcast(ctx context.Context, env *push.Envelope) {
	select {
	case h.broadcast <- env:
	case <-h.ctx.Done():
	case <-ctx.Done():
	}
}

// Backlog returns the envelopes broadcast after cursor, plus the new cursor
// to poll from. Cursor zero means a fresh client: it gets no replay, only the
// current position, so stale boards do not resurrect deleted entries.
func (h *Hub) Backlog(cursor uint64) (uint64, []*push.Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if cursor == 0 || cursor >= h.seq {
		return h.seq, nil
	}

	out := make([]*push.Envelope, 0, len(h.backlog))
	for _, env := range h.backlog {
		if env.Seq > cursor {
			out = append(out, env)
		}
	}
	return h.seq, out
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	logging.From(h.ctx).Info("board client connected", "total_clients", len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client]; !exists {
		return
	}
	delete(h.clients, client)

	client.mu.Lock()
	if client.send != nil {
		close(client.send)
		client.send = nil
	}
	client.mu.Unlock()

	client.cancel()
	logging.From(h.ctx).Info("board client disconnected", "total_clients", len(h.clients))
}

func (h *Hub) broadcastEnvelope(env *push.Envelope) {
	h.mu.Lock()
	h.seq++
	env.Seq = h.seq
	h.backlog = append(h.backlog, env)
	if len(h.backlog) > backlogSize {
		h.backlog = h.backlog[len(h.backlog)-backlogSize:]
	}
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	data, err := env.ToBytes()
	if err != nil {
		errs.Handle(h.ctx, err)
		return
	}

	for _, client := range clients {
		// The send stays under the client mutex so a concurrent Close
		// cannot close the channel between the nil check and the send.
		client.mu.Lock()
		full := false
		if client.send != nil {
			select {
			case client.send <- data:
			default:
				full = true
			}
		}
		client.mu.Unlock()

		if full {
			// Client is too slow to keep up, drop it. This runs on the
			// Run goroutine, so it must not go through the unregister
			// channel; that channel is serviced by this goroutine.
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) NewClient(conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(h.ctx)
	return &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, clientSendBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// ClientCount returns the number of connected websocket clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close gracefully shuts down the hub and every connected client.
func (h *Hub) Close() error {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.cancel()
		client.mu.Lock()
		if client.send != nil {
			close(client.send)
			client.send = nil
		}
		client.mu.Unlock()
	}
	h.clients = make(map[*Client]bool)

	return nil
}
