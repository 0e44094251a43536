package push

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campus-lab/campusboard/pkg/utils/logging"
	"github.com/campus-lab/campusboard/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"

	"github.com/campus-lab/campusboard/pkg/domain/model/push"
)

// PollResponse is the body of GET /api/push/poll. Cursor advances with each
// broadcast; a request with cursor 0 receives the current tail and no
// backlog, so a fresh client only sees events from now on.
type PollResponse struct {
	Cursor uint64           `json:"cursor"`
	Events []*push.Envelope `json:"events"`
}

// runPolling drains the hub's backlog ring over plain HTTP. It is the
// fallback when the websocket transport cannot connect; semantics are the
// same, with delivery delayed by up to one poll interval.
func (c *Conn) runPolling() (bool, error) {
	cursor := uint64(0)
	connected := false

	logger := logging.From(c.ctx)

	for {
		resp, err := c.poll(cursor)
		if err != nil {
			c.connected.Store(false)
			return connected, err
		}
		if !connected {
			connected = true
			c.connected.Store(true)
			logger.Debug("push channel connected", "transport", TransportPolling)
		}
		cursor = resp.Cursor
		for _, env := range resp.Events {
			c.dispatch(env)
		}

		c.drainEmits()

		select {
		case <-c.ctx.Done():
			c.connected.Store(false)
			return connected, nil
		case <-time.After(c.opts.ReconnectDelay):
		}
	}
}

func (c *Conn) poll(cursor uint64) (*PollResponse, error) {
	url := fmt.Sprintf("%s/api/push/poll?cursor=%d", c.baseURL, cursor)
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create poll request")
	}
	for k, vs := range c.opts.Header {
		req.Header[k] = vs
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "poll request failed")
	}
	defer safe.Close(c.ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected poll response", goerr.V("status", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read poll response")
	}
	var out PollResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, goerr.Wrap(err, "failed to parse poll response")
	}
	return &out, nil
}

// drainEmits ships queued outbound envelopes over HTTP POST.
func (c *Conn) drainEmits() {
	for {
		select {
		case env := <-c.send:
			if err := c.postEmit(env); err != nil {
				logging.From(c.ctx).Warn("failed to emit push event", "error", err)
				return
			}
		default:
			return
		}
	}
}

func (c *Conn) postEmit(env *push.Envelope) error {
	data, err := env.ToBytes()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, c.baseURL+"/api/push", bytes.NewReader(data))
	if err != nil {
		return goerr.Wrap(err, "failed to create emit request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range c.opts.Header {
		req.Header[k] = vs
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "emit request failed")
	}
	defer safe.Close(c.ctx, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return goerr.New("emit rejected", goerr.V("status", resp.StatusCode))
	}
	return nil
}
