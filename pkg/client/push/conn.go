package push

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Transport selects how the connection reaches the push channel.
type Transport string

const (
	TransportWebSocket Transport = "websocket"
	TransportPolling   Transport = "polling"
)

// Options tunes the connection. Zero values fall back to the defaults below,
// which match the board's browser client: websocket with polling fallback,
// five reconnect attempts, one second fixed delay.
type Options struct {
	Transports        []Transport
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	Header            http.Header
	HTTPClient        *http.Client
}

func (x Options) withDefaults() Options {
	if len(x.Transports) == 0 {
		x.Transports = []Transport{TransportWebSocket, TransportPolling}
	}
	if x.ReconnectAttempts == 0 {
		x.ReconnectAttempts = 5
	}
	if x.ReconnectDelay == 0 {
		x.ReconnectDelay = time.Second
	}
	if x.HTTPClient == nil {
		x.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return x
}

// Conn is a best-effort push channel connection. It is a consistency-improving
// side channel, never a correctness dependency: the stores work from the local
// cache and the remote service alone, so Connect returns immediately and dials
// in the background, tolerating an unreachable server at startup.
type Conn struct {
	baseURL string
	opts    Options

	mu       sync.Mutex
	handlers map[string][]func(*push.Envelope)

	send      chan *push.Envelope
	connected atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Connect starts the connection manager and returns without waiting for the
// first dial to succeed.
func Connect(ctx context.Context, baseURL string, opts Options) *Conn {
	ctx, cancel := context.WithCancel(ctx)
	c := &Conn{
		baseURL:  strings.TrimRight(baseURL, "/"),
		opts:     opts.withDefaults(),
		handlers: make(map[string][]func(*push.Envelope)),
		send:     make(chan *push.Envelope, 64),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

// On registers a handler for an event name. Handlers run on the connection's
// receive goroutine and must not block.
func (c *Conn) On(event string, fn func(*push.Envelope)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], fn)
}

// Emit queues an envelope for the server. Delivery is fire-and-forget; when
// the outbound buffer is full the envelope is dropped with an error rather
// than blocking the caller.
func (c *Conn) Emit(event string, payload any) error {
	env, err := push.New(event, payload)
	if err != nil {
		return err
	}
	select {
	case c.send <- env:
		return nil
	case <-c.ctx.Done():
		return goerr.New("push connection is closed")
	default:
		return goerr.New("push send buffer is full", goerr.V("event", event))
	}
}

// Connected reports whether a transport session is currently established.
func (c *Conn) Connected() bool {
	return c.connected.Load()
}

// Close tears the connection down and waits for the manager to stop.
func (c *Conn) Close() {
	c.cancel()
	<-c.done
}

func (c *Conn) dispatch(env *push.Envelope) {
	c.mu.Lock()
	fns := append([]func(*push.Envelope){}, c.handlers[env.Event]...)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(env)
	}
}

// run cycles through the configured transports with a fixed backoff delay.
// The attempt counter resets after any session that actually connected, so
// the bound applies to consecutive failures, not lifetime reconnects.
func (c *Conn) run() {
	defer close(c.done)
	logger := logging.From(c.ctx)

	failures := 0
	for {
		if c.ctx.Err() != nil {
			return
		}
		if failures >= c.opts.ReconnectAttempts {
			logger.Warn("push channel gave up reconnecting",
				"attempts", failures, "url", c.baseURL)
			return
		}

		connected := false
		for _, transport := range c.opts.Transports {
			var err error
			switch transport {
			case TransportWebSocket:
				connected, err = c.runWebSocket()
			case TransportPolling:
				connected, err = c.runPolling()
			default:
				err = goerr.New("unknown push transport", goerr.V("transport", transport))
			}
			if err != nil && c.ctx.Err() == nil {
				logger.Debug("push transport session ended",
					"transport", transport, "error", err)
			}
			if connected {
				break
			}
		}
		if c.ctx.Err() != nil {
			return
		}

		if connected {
			failures = 0
		} else {
			failures++
		}

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(c.opts.ReconnectDelay):
		}
	}
}
