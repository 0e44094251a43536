package push

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// Event names broadcast over the push channel. Add/update events carry the
// full entity, delete events the bare ID. Every event is echoed to all
// connected clients including the originator; consumers must absorb
// re-receipt of their own events idempotently.
const (
	NoticeAdd    = "notice:add"
	NoticeUpdate = "notice:update"
	NoticeDelete = "notice:delete"
	EventAdd     = "event:add"
	EventDelete  = "event:delete"
)

// Envelope is the wire form of a push notification. Seq is assigned by the
// hub in broadcast order and backs the polling transport's cursor.
type Envelope struct {
	Event   string          `json:"event"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// DeletePayload is the payload of delete events.
type DeletePayload struct {
	ID string `json:"id"`
}

func New(event string, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal push payload", goerr.V("event", event))
	}
	return &Envelope{Event: event, Payload: raw}, nil
}

func (x *Envelope) ToBytes() ([]byte, error) {
	data, err := json.Marshal(x)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal push envelope")
	}
	return data, nil
}

func (x *Envelope) FromBytes(data []byte) error {
	if err := json.Unmarshal(data, x); err != nil {
		return goerr.Wrap(err, "failed to parse push envelope")
	}
	return nil
}

// IsValidEvent reports whether the event name is one the board broadcasts.
func (x *Envelope) IsValidEvent() bool {
	switch x.Event {
	case NoticeAdd, NoticeUpdate, NoticeDelete, EventAdd, EventDelete:
		return true
	default:
		return false
	}
}
