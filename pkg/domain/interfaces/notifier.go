package interfaces

import (
	"context"

	"github.com/campus-lab/campusboard/pkg/domain/model/push"
)

// BoardNotifier fans an entity change out to every connected client,
// including the originator. Delivery is best effort.
type BoardNotifier interface {
	Broadcast(ctx context.Context, env *push.Envelope)
}

// DiscardNotifier drops every broadcast. Used when no push channel is wired,
// e.g. in tests.
type DiscardNotifier struct{}

func (DiscardNotifier) Broadcast(context.Context, *push.Envelope) {}
